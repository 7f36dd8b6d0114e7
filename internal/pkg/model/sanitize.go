package model

// HazardousForeignKeys lists, per kind, attributes that reference
// identifiers in the source tenant's id space. They must never be copied
// into the destination, the destination values are substituted by the
// caller after the object is built.
var HazardousForeignKeys = map[string][]string{ // nolint: gochecknoglobals
	KindProject:          {"namespace_id", "creator_id", "group_runners_enabled", "moved_to_id"},
	KindMember:           {"project_id", "source_id", "invite_email"},
	KindLabel:            {"project_id", "group_id"},
	KindLabelLink:        {"project_id", "label_id", "target_id"},
	KindMilestone:        {"project_id", "group_id"},
	KindIssue:            {"project_id", "milestone_id", "moved_to_id", "duplicated_to_id", "promoted_to_epic_id"},
	KindMergeRequest:     {"project_id", "target_project_id", "source_project_id", "milestone_id", "assignee_id", "head_pipeline_id", "latest_merge_request_diff_id"},
	KindMergeRequestDiff: {"project_id", "merge_request_id"},
	KindDiffCommit:       {"merge_request_diff_id", "commit_author_id", "committer_id"},
	KindDiffFile:         {"merge_request_diff_id"},
	KindApproval:         {"project_id", "merge_request_id"},
	KindNote:             {"project_id", "noteable_id", "discussion_id", "review_id"},
	KindPipeline:         {"project_id", "auto_canceled_by_id", "pipeline_schedule_id", "merge_request_id"},
	KindStage:            {"project_id", "pipeline_id"},
	KindJob:              {"project_id", "pipeline_id", "stage_id", "commit_id", "erased_by_id", "runner_id", "auto_canceled_by_id", "upstream_pipeline_id"},
	KindPipelineSchedule: {"project_id"},
	KindCiVariable:       {"project_id"},
	KindProtectedBranch:  {"project_id"},
	KindMergeAccessLevel: {"protected_branch_id", "group_id"},
	KindPushAccessLevel:  {"protected_branch_id", "group_id"},
	KindHook:             {"project_id", "service_id", "integration_id"},
	KindEvent:            {"project_id", "target_id"},
}

// UserRefPolicy defines the fallback when a user reference
// cannot be resolved through the member mapping.
type UserRefPolicy int

const (
	// UserRefFallbackImporter substitutes the importing user.
	UserRefFallbackImporter UserRefPolicy = iota
	// UserRefNilIfUnmapped clears the attribute, it must not default.
	UserRefNilIfUnmapped
	// UserRefRequired discards the whole record, the attribute is its primary actor.
	UserRefRequired
	// UserRefAlwaysImporter ignores the exported value entirely.
	UserRefAlwaysImporter
)

// UserReferences lists, per kind, attributes that denote a user identity.
// They are resolved through the member mapping, never copied.
var UserReferences = map[string]map[string]UserRefPolicy{ // nolint: gochecknoglobals
	KindIssue: {
		"author_id":         UserRefFallbackImporter,
		"updated_by_id":     UserRefNilIfUnmapped,
		"closed_by_id":      UserRefNilIfUnmapped,
		"last_edited_by_id": UserRefNilIfUnmapped,
	},
	KindMergeRequest: {
		"author_id":         UserRefFallbackImporter,
		"updated_by_id":     UserRefNilIfUnmapped,
		"merge_user_id":     UserRefNilIfUnmapped,
		"last_edited_by_id": UserRefNilIfUnmapped,
	},
	KindNote: {
		"author_id":      UserRefFallbackImporter,
		"updated_by_id":  UserRefNilIfUnmapped,
		"resolved_by_id": UserRefNilIfUnmapped,
	},
	KindPipeline: {
		"user_id": UserRefFallbackImporter,
	},
	KindJob: {
		"user_id": UserRefFallbackImporter,
	},
	KindPipelineSchedule: {
		"owner_id": UserRefAlwaysImporter,
	},
	KindMilestone: {
		"updated_by_id": UserRefNilIfUnmapped,
	},
	KindEvent: {
		"author_id": UserRefRequired,
	},
	KindApproval: {
		"user_id": UserRefRequired,
	},
	KindMergeAccessLevel: {
		"user_id": UserRefNilIfUnmapped,
	},
	KindPushAccessLevel: {
		"user_id": UserRefNilIfUnmapped,
	},
}

// EncryptedAttributes lists, per kind, attributes whose storage is
// encrypted at rest. They are always cleared, secrets never cross tenants.
var EncryptedAttributes = map[string][]string{ // nolint: gochecknoglobals
	KindProject:    {"runners_token", "runners_token_encrypted"},
	KindCiVariable: {"value", "encrypted_value", "encrypted_value_iv", "encrypted_value_salt"},
	KindHook:       {"token", "encrypted_token", "encrypted_token_iv", "encrypted_url", "encrypted_url_iv"},
	KindJob:        {"token", "token_encrypted"},
}

// renderedCacheAttributes are rendered markdown caches, they are dropped
// on import so the destination re-renders the markdown.
var renderedCacheAttributes = []string{ // nolint: gochecknoglobals
	"cached_markdown_version",
	"title_html",
	"description_html",
	"note_html",
}

// RenderedCacheAttributes returns attribute names of rendered markdown caches.
func RenderedCacheAttributes() []string {
	return renderedCacheAttributes
}
