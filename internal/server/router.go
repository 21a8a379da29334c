package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/steam-top/steam-top/internal/scorecard"
)

// Options controls how the Fiber application should behave.
type Options struct {
	Logger     *logrus.Logger
	ListenPort int

	// DataFile 是导入任务维护的快照文件，每次请求即时读取。
	DataFile string

	// Scorecard 为 nil 时 /scorecard.png 统一返回 503。
	Scorecard *scorecard.Renderer

	// ImageDir 非空且 ImagePublicPath 是本地路径时，缓存图片由本应用直接
	// 托管；公开地址指向外部 CDN 时这两项留空即可。
	ImageDir        string
	ImagePublicPath string
}

const contextKeyRequestID = "_steamtop_request_id"

// NewApp builds a Fiber application with request-ID middleware and the
// top-games / scorecard routes.
func NewApp(opts Options) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.DataFile == "" {
		return nil, errors.New("data file is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/api/top-games", topGamesHandler(opts))
	app.Get("/scorecard.png", scorecardHandler(opts))

	if opts.ImageDir != "" && strings.HasPrefix(opts.ImagePublicPath, "/") {
		app.Use(opts.ImagePublicPath, static.New(opts.ImageDir))
	}

	return app, nil
}

// requestIDMiddleware 为每个请求生成 UUID 并写入 X-Request-ID 响应头。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
