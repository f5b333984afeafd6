// Package results builds and parses the result URL parameters shared by the
// quiz, the results view and the submitter.
package results

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/digest"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// Query parameter names.
const (
	ParamScore   = "score"
	ParamDigest  = "digest"
	ParamEdition = "edition"
)

// Params is a finalized result as carried in the URL.
type Params struct {
	Score       []float64
	ScoreString string
	Digest      string
	Edition     model.Edition
}

// Build formats and fingerprints a finalized vector.
func Build(vector []float64, edition model.Edition) (Params, error) {
	if err := codec.CheckRange(vector); err != nil {
		return Params{}, err
	}
	s := codec.Format(vector)
	return Params{
		Score:       append([]float64(nil), vector...),
		ScoreString: s,
		Digest:      digest.Fingerprint(s),
		Edition:     edition,
	}, nil
}

// Query renders the URL query string. The score is percent-encoded once.
func (p Params) Query() string {
	var b strings.Builder
	b.WriteString(ParamScore + "=" + codec.Encode(p.Score))
	b.WriteString("&" + ParamDigest + "=" + url.QueryEscape(p.Digest))
	b.WriteString("&" + ParamEdition + "=" + string(p.Edition))
	return b.String()
}

// Parse reads result parameters from a raw query string. The score must hold
// exactly axisCount values.
func Parse(rawQuery string, axisCount int) (Params, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}
	raw := values.Get(ParamScore)
	vector, err := codec.Decode(raw, axisCount)
	if err != nil {
		return Params{}, err
	}
	// The digest covers the score exactly as received, not its re-rendering.
	plain, err := url.PathUnescape(raw)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", codec.ErrParse, err)
	}
	// Form decoding turns '+' from an unescaped base64 token into spaces.
	token := strings.ReplaceAll(values.Get(ParamDigest), " ", "+")
	return Params{
		Score:       vector,
		ScoreString: plain,
		Digest:      token,
		Edition:     model.ParseEdition(values.Get(ParamEdition)),
	}, nil
}

// Verify recomputes the fingerprint and fails if the score was edited.
func (p Params) Verify() error {
	if p.Digest == "" {
		return ErrMissingDigest
	}
	s := p.ScoreString
	if s == "" {
		s = codec.Format(p.Score)
	}
	if !digest.Verify(s, p.Digest) {
		return ErrDigestMismatch
	}
	return nil
}
