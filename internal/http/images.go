package httpx

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImageLister produces presigned URLs for the website's image assets.
type ImageLister interface {
	ListWebsiteImages(ctx context.Context) ([]string, error)
}

// ImagesRouter serves the website image listing endpoint.
type ImagesRouter struct {
	base
	images ImageLister
}

// NewImagesRouter wires the image routes.
func NewImagesRouter(svc ImageLister, limiter RateLimiter, logger *slog.Logger) *ImagesRouter {
	r := &ImagesRouter{
		base:   newBase(logger, limiter, nil, "images"),
		images: svc,
	}
	r.routes()
	return r
}

func (r *ImagesRouter) routes() {
	r.mux.HandleFunc("/images", r.audit(r.handleListImages))
	r.mux.HandleFunc("/healthz", r.handleHealthz(nil))
	r.mux.Handle("/metrics", promhttp.Handler())
}

func (r *ImagesRouter) handleListImages(w http.ResponseWriter, req *http.Request) {
	setCORSHeaders(w)
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	urls, err := r.images.ListWebsiteImages(req.Context())
	if err != nil {
		r.logger.Error("image listing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"Message": "Internal Server error"})
		return
	}
	if urls == nil {
		urls = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"presignedUrls": urls})
}
