package handlers

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/services"
)

const sniffLen = 512

// ProfileService is satisfied by *services.ProfileService.
type ProfileService interface {
	GetProfile(ctx context.Context, rawUserID string) (assembler.UserProfileResponse, error)
	UploadImage(ctx context.Context, rawUserID string, img services.ProfileImage) (assembler.UserProfileResponse, error)
	OpenImage(ctx context.Context, rawUserID string) (io.ReadCloser, error)
}

// ProfileHandler provides HTTP handlers for user profiles and their images.
type ProfileHandler struct {
	profiles      ProfileService
	maxImageBytes int64
}

// NewProfileHandler constructs a handler with the provided service.
func NewProfileHandler(profiles ProfileService, maxImageBytes int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, maxImageBytes: maxImageBytes}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, paramUserID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UploadImage accepts a multipart form with the image in the "image" field.
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.parseImage(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.profiles.UploadImage(r.Context(), chi.URLParam(r, paramUserID), img)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	rc, err := h.profiles.OpenImage(r.Context(), chi.URLParam(r, paramUserID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, sniffLen)
	head, _ := br.Peek(sniffLen)
	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, br)
}

func (h *ProfileHandler) parseImage(w http.ResponseWriter, r *http.Request) (services.ProfileImage, error) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+sniffLen*2)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.ProfileImage{}, errors.New("Uploaded file too large")
		}
		return services.ProfileImage{}, errors.New("Invalid multipart form")
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		return services.ProfileImage{}, errors.New("Image file is required")
	}
	data, err := readFileLimited(file, h.maxImageBytes)
	_ = file.Close()
	if err != nil {
		return services.ProfileImage{}, err
	}

	return services.ProfileImage{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
