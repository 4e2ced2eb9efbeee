package preview

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"tripdesk/session"
	"tripdesk/utils"

	"github.com/julienschmidt/httprouter"
)

// owner is the live session the file belongs to when the browser names one,
// else the signed-in admin.
func owner(r *http.Request) string {
	if id := r.FormValue("session"); id != "" {
		return id
	}
	return session.FromContext(r.Context()).Actor()
}

func UploadHandler(store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := r.ParseMultipartForm(MaxFileSize + 1<<20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "File missing")
			return
		}
		defer file.Close()

		item, err := store.Create(owner(r), hdr.Filename, file)
		switch {
		case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrUnsupported):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Printf("[preview] create %s: %v", hdr.Filename, err)
			utils.RespondWithError(w, http.StatusBadRequest, "Could not read file")
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "data": item})
	}
}

// ServeHandler writes the thumbnail for images unless ?original=true.
func ServeHandler(store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		item, ok := store.Lookup(ps.ByName("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		body, ctype := item.Data(), item.ContentType
		if thumb := item.Thumb(); thumb != nil && !utils.ParseBool(r.URL.Query().Get("original")) {
			body, ctype = thumb, "image/jpeg"
		}
		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func RevokeHandler(store *Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !store.Revoke(ps.ByName("id")) {
			utils.RespondWithError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
