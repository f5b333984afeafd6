// Package dataset loads quiz definitions, validates them against the
// embedded CUE schema and compiles them into runtime questions and values.
package dataset

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/pcbvalues/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultFS embed.FS

// Source file base names. Each may be authored as .yaml, .yml or .json.
const (
	valuesFile    = "values"
	questionsFile = "questions"
)

var extensions = []string{".yaml", ".yml", ".json"}

// RawValue is an axis definition as authored.
type RawValue struct {
	Name       string   `yaml:"name" json:"name"`
	Key        string   `yaml:"key" json:"key"`
	Desc       string   `yaml:"desc,omitempty" json:"desc,omitempty"`
	Left       string   `yaml:"left" json:"left"`
	Right      string   `yaml:"right" json:"right"`
	IconLeft   string   `yaml:"icon_left" json:"icon_left"`
	IconRight  string   `yaml:"icon_right" json:"icon_right"`
	ColorLeft  string   `yaml:"color_left" json:"color_left"`
	ColorRight string   `yaml:"color_right" json:"color_right"`
	WhiteLabel [2]bool  `yaml:"white_label" json:"white_label"`
	Tiers      []string `yaml:"tiers" json:"tiers"`
}

// RawQuestion is a question as authored, with effects keyed by axis key.
type RawQuestion struct {
	Question string             `yaml:"question" json:"question"`
	Effect   map[string]float64 `yaml:"effect" json:"effect"`
	YesNo    bool               `yaml:"yesno" json:"yesno"`
	Short    bool               `yaml:"short" json:"short"`
}

// Raw is the uncompiled dataset.
type Raw struct {
	Values    []RawValue    `yaml:"values" json:"values"`
	Questions []RawQuestion `yaml:"questions" json:"questions"`
}

// Dataset is the compiled, immutable question and axis set.
type Dataset struct {
	Values    []model.Value
	Questions []model.Question
}

// AxisCount returns the number of axes.
func (d *Dataset) AxisCount() int { return len(d.Values) }

// Keys returns the axis keys in axis order.
func (d *Dataset) Keys() []string {
	keys := make([]string, len(d.Values))
	for i, v := range d.Values {
		keys[i] = v.Key
	}
	return keys
}

// ShortCount returns the number of short-edition questions.
func (d *Dataset) ShortCount() int {
	n := 0
	for _, q := range d.Questions {
		if q.IsShort() {
			n++
		}
	}
	return n
}

var (
	defaultOnce sync.Once
	defaultSet  *Dataset
	defaultErr  error
)

// Default returns the embedded dataset. It is compiled once.
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(defaultFS, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultSet, defaultErr = Load(sub)
	})
	return defaultSet, defaultErr
}

// LoadDir loads, validates and compiles the dataset stored in dir.
func LoadDir(dir string) (*Dataset, error) {
	return Load(os.DirFS(dir))
}

// Load reads values and questions from fsys, validates and compiles them.
func Load(fsys fs.FS) (*Dataset, error) {
	raw, err := ReadRaw(fsys)
	if err != nil {
		return nil, err
	}
	return Compile(raw)
}

// ReadRaw reads and schema-checks the raw definitions in fsys.
func ReadRaw(fsys fs.FS) (*Raw, error) {
	valuesDoc, err := readDoc(fsys, valuesFile)
	if err != nil {
		return nil, err
	}
	questionsDoc, err := readDoc(fsys, questionsFile)
	if err != nil {
		return nil, err
	}

	var values, questions any
	if err := yaml.Unmarshal(valuesDoc, &values); err != nil {
		return nil, fmt.Errorf("%w: parse values: %v", ErrInvalidDataset, err)
	}
	if err := yaml.Unmarshal(questionsDoc, &questions); err != nil {
		return nil, fmt.Errorf("%w: parse questions: %v", ErrInvalidDataset, err)
	}

	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	if err := v.validate(map[string]any{
		"values":    values,
		"questions": questions,
	}); err != nil {
		return nil, err
	}

	raw := &Raw{}
	if err := yaml.Unmarshal(valuesDoc, &raw.Values); err != nil {
		return nil, fmt.Errorf("%w: decode values: %v", ErrInvalidDataset, err)
	}
	if err := yaml.Unmarshal(questionsDoc, &raw.Questions); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %v", ErrInvalidDataset, err)
	}
	return raw, nil
}

func readDoc(fsys fs.FS, base string) ([]byte, error) {
	for _, ext := range extensions {
		b, err := fs.ReadFile(fsys, base+ext)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s%s: %w", base, ext, err)
		}
	}
	return nil, fmt.Errorf("%w: no %s file (.yaml, .yml or .json)", ErrInvalidDataset, base)
}

// Compile turns raw definitions into runtime values and questions. Effects
// are laid out in axis order; axes missing from an effect map weigh 0.
func Compile(raw *Raw) (*Dataset, error) {
	if raw == nil || len(raw.Values) == 0 || len(raw.Questions) == 0 {
		return nil, fmt.Errorf("%w: values and questions must not be empty", ErrInvalidDataset)
	}

	index := make(map[string]int, len(raw.Values))
	values := make([]model.Value, 0, len(raw.Values))
	for i, rv := range raw.Values {
		if _, dup := index[rv.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate axis key %q", ErrInvalidDataset, rv.Key)
		}
		index[rv.Key] = i
		values = append(values, compileValue(rv))
	}

	questions := make([]model.Question, 0, len(raw.Questions))
	for i, rq := range raw.Questions {
		effect := make([]float64, len(values))
		for key, w := range rq.Effect {
			pos, ok := index[key]
			if !ok {
				return nil, fmt.Errorf("%w: question %d references unknown axis %q", ErrInvalidDataset, i+1, key)
			}
			effect[pos] = w
		}
		flags := 0
		if rq.YesNo {
			flags |= model.FlagYesNo
		}
		if rq.Short {
			flags |= model.FlagShort
		}
		questions = append(questions, model.Question{Text: rq.Question, Flags: flags, Effect: effect})
	}

	return &Dataset{Values: values, Questions: questions}, nil
}

func compileValue(rv RawValue) model.Value {
	white := 0
	if rv.WhiteLabel[0] {
		white |= model.WhiteLeft
	}
	if rv.WhiteLabel[1] {
		white |= model.WhiteRight
	}
	return model.Value{
		Name:       rv.Name,
		Key:        rv.Key,
		Left:       rv.Left,
		Right:      rv.Right,
		IconLeft:   rv.IconLeft,
		IconRight:  rv.IconRight,
		ColorLeft:  rv.ColorLeft,
		ColorRight: rv.ColorRight,
		White:      white,
		Tiers:      append([]string(nil), rv.Tiers...),
	}
}

// WriteJSON writes questions.json and values.json into dir.
func (d *Dataset) WriteJSON(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for name, doc := range map[string]any{
		questionsFile + ".json": d.Questions,
		valuesFile + ".json":    d.Values,
	} {
		b, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
