package http

import (
	"net/http"

	"github.com/go-kit/log"

	"github.com/chunkd/chunkd/applications/server"
	"github.com/chunkd/chunkd/applications/server/config"
)

func NewHTTPServer(conf config.Api, uploadService server.UploadService, logger log.Logger) *http.Server {
	mux := NewRouter(uploadService, logger)
	return &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: mux,
	}
}
