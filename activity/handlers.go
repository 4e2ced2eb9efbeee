package activity

import (
	"log"
	"net/http"
	"strconv"

	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

// ListHandler returns the latest entries, newest first.
func ListHandler(rec Recorder) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit < 1 {
			limit = 50
		}
		if limit > 200 {
			limit = 200
		}

		entries, err := rec.Recent(r.Context(), limit)
		if err != nil {
			log.Printf("[activity] recent: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "data": entries})
	}
}
