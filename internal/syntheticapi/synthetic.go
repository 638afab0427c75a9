// Package syntheticapi is the HTTP client for the synthetic data generation
// backend, plus the helpers that turn its answers into transcript text.
package syntheticapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/tensorplex-labs/synthchat/internal/config"
)

const DefaultTimeout = 180 * time.Second

type SyntheticAPIInterface interface {
	SubmitPrompt(ctx context.Context, prompt string, format OutputFormat, modelID string) (RawBody, error)
	SubmitFile(ctx context.Context, file Upload, modelID string) (RawBody, error)
}

// SyntheticAPI is a REST client wrapper for the generation service. Calls share
// no mutable state and are never retried.
type SyntheticAPI struct {
	client       *resty.Client
	timeout      time.Duration
	volume       int
	defaultModel string
}

func NewSyntheticAPI(cfg *config.SyntheticAPIEnvConfig) (*SyntheticAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	baseURL := strings.TrimSpace(cfg.SyntheticAPIUrl)
	if baseURL == "" {
		return nil, fmt.Errorf("synthetic api url cannot be empty")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	timeout := cfg.ClientTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	volume := cfg.Volume
	if volume <= 0 {
		volume = DefaultVolume
	}
	model := cfg.DefaultModel
	if model == "" {
		model = DefaultModel
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	log.Debug().
		Str("base_url", baseURL).
		Str("timeout", timeout.String()).
		Int("volume", volume).
		Msg("synthetic api client initialized")

	return &SyntheticAPI{
		client:       client,
		timeout:      timeout,
		volume:       volume,
		defaultModel: model,
	}, nil
}

// SubmitPrompt asks the backend to generate records for prompt.
func (s *SyntheticAPI) SubmitPrompt(ctx context.Context, prompt string, format OutputFormat, modelID string) (RawBody, error) {
	if format == "" {
		format = FormatCSV
	}
	body := GenerateRequest{
		OutputFormat: format,
		Prompt:       prompt,
		Volume:       s.volume,
		Parameters:   GenerateParameters{SelectedModel: s.model(modelID)},
	}

	r := s.client.R().
		SetContext(ctx).
		SetBody(body)

	return s.do(ctx, r, GeneratePath)
}

// SubmitFile uploads a file as multipart form data.
func (s *SyntheticAPI) SubmitFile(ctx context.Context, file Upload, modelID string) (RawBody, error) {
	if file.Content == nil {
		return nil, fmt.Errorf("upload %q has no content", file.Name)
	}

	r := s.client.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, file.Content).
		SetFormData(map[string]string{"selectedModel": s.model(modelID)})

	return s.do(ctx, r, UploadPath)
}

func (s *SyntheticAPI) model(modelID string) string {
	if modelID == "" {
		return s.defaultModel
	}
	return modelID
}

func (s *SyntheticAPI) do(ctx context.Context, r *resty.Request, path string) (RawBody, error) {
	start := time.Now()
	resp, err := r.Post(path)
	if err != nil {
		te := s.networkError(ctx, err)
		log.Error().
			Err(err).
			Str("path", path).
			Bool("timeout", te.Timeout).
			Dur("duration", time.Since(start)).
			Msg("synthetic api request failed")
		return nil, te
	}

	if resp.IsError() {
		log.Error().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Str("path", path).
			Msg("synthetic api non-2xx")
		return nil, statusErrorFromBody(resp.StatusCode(), resp.Body())
	}

	log.Debug().
		Int("status", resp.StatusCode()).
		Str("path", path).
		Dur("duration", resp.Time()).
		Msg("synthetic api request succeeded")

	return RawBody(resp.Body()), nil
}

// networkError classifies a request that got no response. Only the client's own
// timeout is reported with the configured duration; a done caller context keeps
// the context's error text.
func (s *SyntheticAPI) networkError(ctx context.Context, err error) *TransportError {
	te := &TransportError{Message: err.Error(), Err: err}

	if ctxErr := ctx.Err(); ctxErr != nil {
		te.Message = ctxErr.Error()
		te.Timeout = errors.Is(ctxErr, context.DeadlineExceeded)
		return te
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		te.Timeout = true
		te.Message = fmt.Sprintf("timeout of %dms exceeded", s.timeout.Milliseconds())
	}
	return te
}

func statusErrorFromBody(status int, body []byte) *TransportError {
	te := &TransportError{
		StatusCode: status,
		Message:    statusError(status),
	}
	if !gjson.ValidBytes(body) {
		return te
	}

	if detail := gjson.GetBytes(body, "detail"); detail.IsArray() {
		te.Detail = validationDetails(detail)
	}

	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
		te.ServerMessage = msg.Str
	}
	return te
}

func validationDetails(detail gjson.Result) []ValidationDetail {
	var out []ValidationDetail
	for _, d := range detail.Array() {
		vd := ValidationDetail{
			Msg:  d.Get("msg").String(),
			Type: d.Get("type").String(),
		}
		for _, l := range d.Get("loc").Array() {
			vd.Loc = append(vd.Loc, l.String())
		}
		out = append(out, vd)
	}
	return out
}
