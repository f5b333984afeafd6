package dataset

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

const schemaFile = "schemas/dataset.cue"

// validator checks decoded raw documents against the embedded CUE schema.
type validator struct {
	ctx *cue.Context
	def cue.Value
}

func newValidator() (*validator, error) {
	content, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	ctx := cuecontext.New()
	inst := ctx.CompileBytes(content, cue.Filename(schemaFile))
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := inst.LookupPath(cue.ParsePath("#Dataset"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema %s has no #Dataset definition", schemaFile)
	}
	return &validator{ctx: ctx, def: def}, nil
}

// validate unifies data with #Dataset and requires a concrete result.
func (v *validator) validate(data map[string]any) error {
	value := v.ctx.Encode(data)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrInvalidDataset, err)
	}
	unified := v.def.Unify(value)
	if err := unified.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return nil
}
