package model

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/validator"
)

// RelationDescriptor declares the exportable shape of one relation:
// the attribute allowlist and inline sub-relations. The descriptor table
// is consumed read-only by the whole pipeline.
type RelationDescriptor struct {
	Key string `json:"key" validate:"required"`
	// Attributes is the export allowlist, other attributes are stripped.
	Attributes []string `json:"attributes" validate:"required,min=1"`
	// Inline sub-relations embed in the parent record as nested JSON.
	Inline []*RelationDescriptor `json:"inline,omitempty" validate:"omitempty,dive"`
	// Ordered marks relations whose record order is significant.
	Ordered bool `json:"ordered,omitempty"`
}

// Schema is the declarative relation schema of the export tree:
// one root document descriptor plus child relations in declaration order.
type Schema struct {
	Root      *RelationDescriptor   `json:"root" validate:"required"`
	Relations []*RelationDescriptor `json:"relations" validate:"required,min=1,dive"`
}

func (s *Schema) Validate(ctx context.Context) error {
	return validator.Validate(ctx, s)
}

// Relation returns the descriptor of a top-level relation.
func (s *Schema) Relation(key string) (*RelationDescriptor, bool) {
	for _, relation := range s.Relations {
		if relation.Key == key {
			return relation, true
		}
	}
	return nil, false
}

func (d *RelationDescriptor) AllowedAttribute(name string) bool {
	for _, attribute := range d.Attributes {
		if attribute == name {
			return true
		}
	}
	return false
}

func (d *RelationDescriptor) InlineRelation(key string) (*RelationDescriptor, bool) {
	for _, relation := range d.Inline {
		if relation.Key == key {
			return relation, true
		}
	}
	return nil, false
}

// DefaultSchema returns the built-in relation descriptor table.
func DefaultSchema() *Schema {
	return &Schema{
		Root: &RelationDescriptor{
			Key: KindProject,
			Attributes: []string{
				"description", "visibility_level", "archived", "merge_requests_template",
				"merge_commit_template", "squash_commit_template", "issues_template",
				"shared_runners_enabled", "build_allow_git_fetch", "build_timeout",
				"pending_delete", "public_builds", "last_repository_check_failed",
				"only_allow_merge_if_pipeline_succeeds", "request_access_enabled",
				"only_allow_merge_if_all_discussions_are_resolved", "printing_merge_request_link_enabled",
				"auto_cancel_pending_pipelines", "delete_error", "disable_overriding_approvers_per_merge_request",
				"resolve_outdated_diff_discussions", "external_authorization_classification_label",
				"suggestion_commit_message", "autoclose_referenced_issues",
			},
		},
		Relations: []*RelationDescriptor{
			{
				Key:        KindMember,
				Attributes: []string{"access_level", "expires_at", "user"},
			},
			{
				Key:        KindLabel,
				Attributes: []string{"title", "color", "description", "type", "priorities"},
			},
			{
				Key:        KindMilestone,
				Attributes: []string{"iid", "title", "description", "state", "due_date", "start_date", "created_at", "updated_at"},
			},
			{
				Key: KindIssue,
				Attributes: []string{
					"iid", "title", "description", "author_id", "updated_by_id", "closed_by_id",
					"last_edited_by_id", "state", "confidential", "due_date", "lock_version",
					"time_estimate", "relative_position", "issue_type", "work_item_type",
					"created_at", "updated_at", "closed_at", "discussion_locked", "weight", "milestone",
				},
				Ordered: true,
				Inline: []*RelationDescriptor{
					{
						Key:        KindNote,
						Attributes: []string{"note", "noteable_type", "author_id", "updated_by_id", "resolved_by_id", "created_at", "updated_at", "system", "author", "type", "position", "original_position", "change_position", "diff_export"},
					},
					{
						Key:        KindLabelLink,
						Attributes: []string{"target_type", "created_at", "updated_at", "label"},
					},
					{
						Key:        KindEvent,
						Attributes: []string{"action", "author_id", "created_at", "updated_at", "target_type"},
					},
				},
			},
			{
				Key: KindMergeRequest,
				Attributes: []string{
					"iid", "title", "description", "source_branch", "target_branch", "author_id",
					"updated_by_id", "merge_user_id", "last_edited_by_id", "state", "merge_status",
					"merge_when_pipeline_succeeds", "merge_error", "squash", "lock_version",
					"created_at", "updated_at", "draft", "allow_maintainer_to_push", "milestone",
				},
				Inline: []*RelationDescriptor{
					{
						Key:        KindMergeRequestDiff,
						Attributes: []string{"state", "base_commit_sha", "head_commit_sha", "start_commit_sha", "commits_count", "real_size", "files_count", KindDiffCommit, KindDiffFile},
						Inline: []*RelationDescriptor{
							{
								Key:        KindDiffCommit,
								Attributes: []string{"sha", "relative_order", "message", "authored_date", "committed_date", "commit_author", "committer"},
								Ordered:    true,
							},
							{
								Key:        KindDiffFile,
								Attributes: []string{"relative_order", "new_file", "renamed_file", "deleted_file", "too_large", "binary", "a_mode", "b_mode", "new_path", "old_path", "diff_export"},
								Ordered:    true,
							},
						},
					},
					{
						Key:        KindApproval,
						Attributes: []string{"user_id", "created_at", "updated_at"},
					},
					{
						Key:        KindNote,
						Attributes: []string{"note", "noteable_type", "author_id", "updated_by_id", "resolved_by_id", "created_at", "updated_at", "system", "author", "type", "position", "original_position", "change_position", "diff_export"},
					},
					{
						Key:        KindEvent,
						Attributes: []string{"action", "author_id", "created_at", "updated_at", "target_type"},
					},
					{
						Key:        KindLabelLink,
						Attributes: []string{"target_type", "created_at", "updated_at", "label"},
					},
				},
			},
			{
				Key:        KindPipeline,
				Attributes: []string{"iid", "ref", "sha", "before_sha", "source", "status", "tag", "user_id", "created_at", "updated_at", "started_at", "finished_at", "duration", KindStage},
				Ordered:    true,
				Inline: []*RelationDescriptor{
					{
						Key:        KindStage,
						Attributes: []string{"name", "status", "position", "lock_version", "created_at", "updated_at", KindJob},
						Ordered:    true,
						Inline: []*RelationDescriptor{
							{
								Key:        KindJob,
								Attributes: []string{"name", "status", "ref", "tag", "stage", "stage_idx", "allow_failure", "when", "user_id", "created_at", "updated_at", "started_at", "finished_at", "type"},
								Ordered:    true,
							},
						},
					},
					{
						Key:        KindNote,
						Attributes: []string{"note", "noteable_type", "author_id", "created_at", "updated_at", "system", "author"},
					},
				},
			},
			{
				Key:        KindPipelineSchedule,
				Attributes: []string{"description", "ref", "cron", "cron_timezone", "active", "owner_id", "created_at", "updated_at"},
			},
			{
				Key:        KindCiVariable,
				Attributes: []string{"key", "value", "protected", "masked", "environment_scope"},
			},
			{
				Key:        KindProtectedBranch,
				Attributes: []string{"name", "allow_force_push", "created_at", "updated_at", KindMergeAccessLevel, KindPushAccessLevel},
				Inline: []*RelationDescriptor{
					{
						Key:        KindMergeAccessLevel,
						Attributes: []string{"access_level", "user_id", "created_at", "updated_at"},
					},
					{
						Key:        KindPushAccessLevel,
						Attributes: []string{"access_level", "user_id", "created_at", "updated_at"},
					},
				},
			},
			{
				Key:        KindHook,
				Attributes: []string{"push_events", "merge_requests_events", "issues_events", "note_events", "pipeline_events", "wiki_page_events", "enable_ssl_verification", "created_at", "updated_at"},
			},
		},
	}
}
