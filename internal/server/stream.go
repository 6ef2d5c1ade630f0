package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var streamContentTypes = map[string]string{
	".avi":  "video/x-msvideo",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".webm": "video/webm",
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	video, err := s.library.VideoByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	f, err := os.Open(video.Path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found on disk")
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "file stat failed")
		return
	}

	if ct, ok := streamContentTypes[strings.ToLower(filepath.Ext(video.Path))]; ok {
		w.Header().Set("Content-Type", ct)
	}

	// ServeContent supports Range if the reader is seekable (os.File is).
	http.ServeContent(w, r, filepath.Base(video.Path), st.ModTime(), f)
}
