package quizcli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// readPopulation loads a gallery dump such as /data/users.json.
func readPopulation(path string) ([]model.Score, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}
	var pop []model.Score
	if err := json.Unmarshal(b, &pop); err != nil {
		return nil, fmt.Errorf("decode population %s: %w", path, err)
	}
	return pop, nil
}

// fetchPopulation lists the gallery from the score store endpoint.
func (a *app) fetchPopulation(ctx context.Context) ([]model.Score, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SubmitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.APIEndpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch population: %s", resp.Status)
	}

	var pop []model.Score
	if err := json.NewDecoder(resp.Body).Decode(&pop); err != nil {
		return nil, fmt.Errorf("decode population: %w", err)
	}
	return pop, nil
}
