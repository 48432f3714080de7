package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/stats"
)

// Requester sends envelopes to the host. *Client satisfies it.
type Requester interface {
	Request(ctx context.Context, typ string, payload any) (Envelope, error)
	Notify(ctx context.Context, typ string, payload any) error
}

// Gateway maps the domain collaborators onto bridge messages. Reads
// return errors so callers can fall back to local state; writes that
// only mirror local state use Notify and never wait on the host.
type Gateway struct {
	r Requester
}

var (
	_ attempt.Mirror  = (*Gateway)(nil)
	_ attempt.Source  = (*Gateway)(nil)
	_ level.Remote    = (*Gateway)(nil)
	_ settings.Remote = (*Gateway)(nil)
)

// NewGateway creates a Gateway over r.
func NewGateway(r Requester) *Gateway {
	return &Gateway{r: r}
}

type saveAttemptsPayload struct {
	Attempts attempt.Collection `json:"attempts"`
}

// SaveAttempts mirrors the full history to the host.
func (g *Gateway) SaveAttempts(ctx context.Context, c attempt.Collection) error {
	return g.r.Notify(ctx, TypeSaveAttempts, saveAttemptsPayload{Attempts: c})
}

// ClearAttempts asks the host to drop its copy of the history.
func (g *Gateway) ClearAttempts(ctx context.Context) error {
	_, err := g.r.Request(ctx, TypeClearAttempts, nil)
	return err
}

// LoadAttempts returns the host copy of the history.
func (g *Gateway) LoadAttempts(ctx context.Context) (attempt.Collection, error) {
	var c attempt.Collection
	if err := g.call(ctx, TypeLoadAttempts, nil, &c); err != nil {
		return attempt.Collection{}, err
	}
	return c, nil
}

// Statistics returns the host's aggregate statistics.
func (g *Gateway) Statistics(ctx context.Context) (stats.HostStatistics, error) {
	var h stats.HostStatistics
	if err := g.call(ctx, TypeGetStatistics, nil, &h); err != nil {
		return stats.HostStatistics{}, err
	}
	if err := h.Err(); err != nil {
		return stats.HostStatistics{}, &HostError{Request: TypeGetStatistics, Message: err.Error()}
	}
	return h, nil
}

type loadLevelsResponse struct {
	Levels []level.Level      `json:"levels"`
	Stats  *level.Progression `json:"stats"`
}

// LoadLevels returns every level with its state plus the progression.
func (g *Gateway) LoadLevels(ctx context.Context) ([]level.Level, level.Progression, error) {
	var resp loadLevelsResponse
	if err := g.call(ctx, TypeLoadLevels, nil, &resp); err != nil {
		return nil, level.Progression{}, err
	}
	var prog level.Progression
	if resp.Stats != nil {
		prog = *resp.Stats
	}
	return resp.Levels, prog, nil
}

type levelRequest struct {
	LevelID int `json:"levelId"`
}

// GetLevel returns one level with its state.
func (g *Gateway) GetLevel(ctx context.Context, id int) (level.Level, error) {
	var lvl level.Level
	if err := g.call(ctx, TypeGetLevel, levelRequest{LevelID: id}, &lvl); err != nil {
		return level.Level{}, err
	}
	return lvl, nil
}

// CompleteLevel submits a finished run and returns the host's rating.
func (g *Gateway) CompleteLevel(ctx context.Context, run level.Run) (level.Result, error) {
	var res level.Result
	if err := g.call(ctx, TypeCompleteLevel, run, &res); err != nil {
		return level.Result{}, err
	}
	return res, nil
}

// LevelProgress returns the host's progression summary.
func (g *Gateway) LevelProgress(ctx context.Context) (level.Progression, error) {
	var p level.Progression
	if err := g.call(ctx, TypeGetLevelProgress, nil, &p); err != nil {
		return level.Progression{}, err
	}
	return p, nil
}

type settingsPayload struct {
	Settings json.RawMessage `json:"settings"`
}

// LoadSettings returns the host settings. Keys the host omits keep their
// defaults. Both {"settings": {...}} and a bare settings object are accepted.
func (g *Gateway) LoadSettings(ctx context.Context) (settings.Settings, error) {
	env, err := g.r.Request(ctx, TypeLoadSettings, nil)
	if err != nil {
		return settings.Settings{}, err
	}
	var wrapped settingsPayload
	if err := env.Decode(&wrapped); err != nil {
		return settings.Settings{}, err
	}
	raw := []byte(wrapped.Settings)
	if len(raw) == 0 || string(raw) == "null" {
		raw = env.Payload
	}
	st := settings.Defaults()
	if err := json.Unmarshal(raw, &st); err != nil {
		return settings.Settings{}, fmt.Errorf("%s: decode settings: %w", env.Type, err)
	}
	return st, nil
}

// SaveSettings stores s on the host.
func (g *Gateway) SaveSettings(ctx context.Context, s settings.Settings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = g.r.Request(ctx, TypeSaveSettings, settingsPayload{Settings: b})
	return err
}

type exportResponse struct {
	Attempts *attempt.Collection `json:"attempts"`
}

// ExportData returns the host's export of the attempt history. The host
// may answer with {"attempts": {...}} or the collection itself.
func (g *Gateway) ExportData(ctx context.Context) (attempt.Collection, error) {
	env, err := g.r.Request(ctx, TypeExportData, nil)
	if err != nil {
		return attempt.Collection{}, err
	}
	var wrapped exportResponse
	if err := env.Decode(&wrapped); err == nil && wrapped.Attempts != nil {
		return *wrapped.Attempts, nil
	}
	var c attempt.Collection
	if err := env.Decode(&c); err != nil {
		return attempt.Collection{}, err
	}
	return c, nil
}

type importRequest struct {
	Data    attempt.Collection `json:"data"`
	Replace bool               `json:"replace"`
}

type importResponse struct {
	Imported *int `json:"imported"`
}

// ImportData sends c to the host for import and returns the number of
// attempts the host reports, or len(c.Attempts) when it reports none.
func (g *Gateway) ImportData(ctx context.Context, c attempt.Collection, replace bool) (int, error) {
	env, err := g.r.Request(ctx, TypeImportData, importRequest{Data: c, Replace: replace})
	if err != nil {
		return 0, err
	}
	var resp importResponse
	if err := env.Decode(&resp); err == nil && resp.Imported != nil {
		return *resp.Imported, nil
	}
	return len(c.Attempts), nil
}

// call sends a request and decodes the response payload into v.
func (g *Gateway) call(ctx context.Context, typ string, payload, v any) error {
	env, err := g.r.Request(ctx, typ, payload)
	if err != nil {
		return err
	}
	return env.Decode(v)
}
