package middleware

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"FleetGuard/Models"
)

// LogConfig holds configuration for the request logging middleware.
type LogConfig struct {
	Console     bool
	File        bool
	LogFilePath string
	SkipPaths   []string
}

// LogData is one request log line, written as JSON.
type LogData struct {
	Timestamp     time.Time     `json:"timestamp"`
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	Status        int           `json:"status"`
	Latency       time.Duration `json:"latency"`
	IP            string        `json:"ip"`
	UserAgent     string        `json:"user_agent"`
	Error         string        `json:"error,omitempty"`
	UserID        interface{}   `json:"user_id,omitempty"`
	Username      string        `json:"username,omitempty"`
	ContentLength int64         `json:"content_length"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:     true,
		File:        true,
		LogFilePath: "logs/requests.log",
		SkipPaths:   []string{"/health"},
	}
}

// LoggingMiddleware logs every request to the console and/or a JSON log
// file, tagging it with the authenticated user when one is present.
func LoggingMiddleware(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.File {
		if err := os.MkdirAll("logs", 0755); err != nil {
			log.Printf("Error creating logs directory: %v\n", err)
		}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		for _, skipPath := range cfg.SkipPaths {
			if c.Path() == skipPath {
				return c.Next()
			}
		}

		err := c.Next()

		data := LogData{
			Timestamp:     start,
			Method:        c.Method(),
			Path:          c.Path(),
			Status:        c.Response().StatusCode(),
			Latency:       time.Since(start),
			IP:            c.IP(),
			UserAgent:     c.Get("User-Agent"),
			ContentLength: int64(len(c.Response().Body())),
		}
		if user := c.Locals("user"); user != nil {
			if u, ok := user.(Models.User); ok {
				data.UserID = u.Id
				data.Username = u.Name
			}
		}
		if err != nil {
			data.Error = err.Error()
		}

		line, _ := json.Marshal(data)
		if cfg.Console {
			log.Println(string(line))
		}
		if cfg.File {
			logToFile(cfg.LogFilePath, string(line))
		}
		return err
	}
}

func logToFile(filePath, message string) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if len(message) > 0 && message[len(message)-1] != '\n' {
		message += "\n"
	}
	if _, err := file.WriteString(message); err != nil {
		log.Printf("Error writing to log file: %v\n", err)
	}
}

// RequestLogger is the middleware with this service's default settings.
func RequestLogger() fiber.Handler {
	return LoggingMiddleware(DefaultLogConfig())
}
