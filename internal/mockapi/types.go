package mockapi

import "github.com/gofiber/fiber/v2"

const (
	DefaultServerHost = "127.0.0.1"
	DefaultServerPort = 5003
	DefaultBodyLimit  = 10 * 1024 * 1024 // 10MB
)

// Server is a local stand-in for the synthetic data backend.
type Server struct {
	App    *fiber.App
	config *ServerConfig
	files  *fileStore
}

type ServerConfig struct {
	Host      string
	Port      int
	BodyLimit int
	// PublicBaseURL prefixes download links; derived from Host and Port when empty.
	PublicBaseURL string
}

// Envelope is the success body: {"data": {...}}.
type Envelope struct {
	Data EnvelopeData `json:"data"`
}

type EnvelopeData struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// ErrorBody is returned for non-validation failures.
type ErrorBody struct {
	Message string `json:"message"`
}

// ValidationBody mirrors a FastAPI 422 answer.
type ValidationBody struct {
	Detail []ValidationItem `json:"detail"`
}

type ValidationItem struct {
	Msg  string `json:"msg"`
	Type string `json:"type"`
	Loc  []any  `json:"loc"`
}
