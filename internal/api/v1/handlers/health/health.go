package health

import (
	"net/http"

	"github.com/deepgram/ragbridge/pkg/httpext"
)

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, response{Status: "healthy", Message: "API is running"})
}
