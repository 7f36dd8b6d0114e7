package model

// Relation kinds. Top-level kinds are also the ndjson file names
// in the export tree, inline kinds are embedded in their parent records.
const (
	KindProject           = "project"
	KindMember            = "project_members"
	KindLabel             = "labels"
	KindLabelLink         = "label_links"
	KindMilestone         = "milestones"
	KindIssue             = "issues"
	KindMergeRequest      = "merge_requests"
	KindMergeRequestDiff  = "merge_request_diff"
	KindDiffCommit        = "merge_request_diff_commits"
	KindDiffFile          = "merge_request_diff_files"
	KindCommitAuthor      = "merge_request_diff_commit_users"
	KindApproval          = "approvals"
	KindNote              = "notes"
	KindPipeline          = "ci_pipelines"
	KindStage             = "stages"
	KindJob               = "statuses"
	KindPipelineSchedule  = "pipeline_schedules"
	KindCiVariable        = "ci_variables"
	KindProtectedBranch   = "protected_branches"
	KindMergeAccessLevel  = "merge_access_levels"
	KindPushAccessLevel   = "push_access_levels"
	KindHook              = "hooks"
	KindEvent             = "events"
)
