package preprocesscmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-postmigrate/internal/pipeline"
)

const preprocessMessageType = "migrate.posts.preprocess"

// ResultCallback receives the result of a run. It is optional and invoked
// synchronously from the handler, also when the run failed part way.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a preprocess execution.
type ResultEnvelope struct {
	Result   pipeline.Result
	Metadata map[string]any
}

// PreprocessCommand migrates one exported post table.
type PreprocessCommand struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	// CommentExportPath enables comment link rewriting.
	CommentExportPath string `json:"comment_export_path,omitempty"`
	// CommentOutputPath defaults to CommentExportPath.
	CommentOutputPath string         `json:"comment_output_path,omitempty"`
	DiffPath          string         `json:"diff_path,omitempty"`
	DryRun            bool           `json:"dry_run,omitempty"`
	ResultCallback    ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PreprocessCommand) Type() string { return preprocessMessageType }

// Validate requires input and output paths and refuses to overwrite the input table.
func (m PreprocessCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.InputPath, validation.Required),
		validation.Field(&m.OutputPath, validation.Required, validation.By(distinctFrom(m.InputPath, "output_path must differ from input_path"))),
		validation.Field(&m.CommentOutputPath, validation.By(requiresSource(m.CommentExportPath))),
		validation.Field(&m.DiffPath, validation.By(distinctFrom(m.InputPath, "diff_path must differ from input_path"))),
	)
}

func distinctFrom(other, message string) validation.RuleFunc {
	return func(value any) error {
		path, _ := value.(string)
		if strings.TrimSpace(path) == "" || strings.TrimSpace(other) == "" {
			return nil
		}
		if filepath.Clean(path) == filepath.Clean(other) {
			return validation.NewError("migrate.posts.preprocess.path_conflict", message)
		}
		return nil
	}
}

func requiresSource(source string) validation.RuleFunc {
	return func(value any) error {
		path, _ := value.(string)
		if strings.TrimSpace(path) != "" && strings.TrimSpace(source) == "" {
			return validation.NewError("migrate.posts.preprocess.comment_export_required", "comment_output_path requires comment_export_path")
		}
		return nil
	}
}
