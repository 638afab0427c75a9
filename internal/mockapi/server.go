// Package mockapi serves the synthetic data backend contract locally so the
// chat client can be exercised without the real service.
package mockapi

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

// NewServer creates the stand-in backend.
func NewServer(serverConfig *ServerConfig) *Server {
	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.Host == "" {
		serverConfig.Host = DefaultServerHost
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = DefaultServerPort
	}
	if serverConfig.BodyLimit == 0 {
		serverConfig.BodyLimit = DefaultBodyLimit
	}
	if serverConfig.PublicBaseURL == "" {
		serverConfig.PublicBaseURL = fmt.Sprintf("http://%s:%d", serverConfig.Host, serverConfig.Port)
	}
	serverConfig.PublicBaseURL = strings.TrimSuffix(serverConfig.PublicBaseURL, "/")

	log.Info().
		Any("serverConfig", serverConfig).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	server := &Server{
		App:    app,
		config: serverConfig,
		files:  newFileStore(),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post(syntheticapi.GeneratePath, server.handleGenerate)
	app.Post(syntheticapi.UploadPath, server.handleUpload)
	app.Get("/files/:name", server.handleFile)

	return server
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(ErrorBody{Message: err.Error()})
}

func validationError(c *fiber.Ctx, field, msg string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationBody{
		Detail: []ValidationItem{{
			Msg:  "Value error, " + msg,
			Type: "value_error",
			Loc:  []any{"body", field},
		}},
	})
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req syntheticapi.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Error().Err(err).Str("route", c.Path()).Msg("Failed to parse request body")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{Message: "invalid JSON body"})
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return validationError(c, "prompt", "prompt must not be empty")
	}
	if req.Volume <= 0 {
		return validationError(c, "volume", "volume must be positive")
	}
	format, err := syntheticapi.ParseOutputFormat(string(req.OutputFormat))
	if err != nil {
		return validationError(c, "output_format", "output_format must be one of csv, xml, json, text")
	}

	name := fmt.Sprintf("%s.%s", uuid.NewString(), format)
	s.files.put(name, renderRows(format, req.Prompt, req.Volume))

	log.Info().
		Str("model", req.Parameters.SelectedModel).
		Str("format", string(format)).
		Int("volume", req.Volume).
		Str("file", name).
		Msg("generated synthetic data")

	return c.JSON(Envelope{Data: EnvelopeData{
		Message: fmt.Sprintf("Generated %d rows", req.Volume),
		URL:     s.config.PublicBaseURL + "/files/" + name,
	}})
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{Message: "missing file part"})
	}
	if err := syntheticapi.ValidateUpload(fh.Filename); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{Message: err.Error()})
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	rows := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			rows++
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	// header line is not a record
	if rows > 0 {
		rows--
	}

	model := c.FormValue("selectedModel")
	log.Info().
		Str("file", fh.Filename).
		Int("rows", rows).
		Str("model", model).
		Msg("received upload")

	return c.JSON(Envelope{Data: EnvelopeData{
		Message: fmt.Sprintf("Received %s (%d rows)", fh.Filename, rows),
	}})
}

func (s *Server) handleFile(c *fiber.Ctx) error {
	f, ok := s.files.get(c.Params("name"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "file not found")
	}
	c.Set(fiber.HeaderContentType, f.contentType)
	return c.Send(f.body)
}

// Address is the host:port the server listens on.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start blocks serving on the configured address.
func (s *Server) Start() error {
	log.Info().Str("address", s.Address()).Msg("mock synthetic api listening")
	return s.App.Listen(s.Address())
}

// Serve blocks serving on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.App.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
