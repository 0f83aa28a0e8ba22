package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger is chi's request logger writing through logrus.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  log,
		NoColor: true,
	})
}
