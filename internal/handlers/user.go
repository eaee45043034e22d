package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/handlers/render"
	"github.com/akulikov/streamtube/internal/handlers/userctx"
	"github.com/akulikov/streamtube/internal/logger"
	"github.com/akulikov/streamtube/internal/service/user"
)

// Uploaded images go through memory, keep them reasonable
const maxUploadBytes = 10 << 20

type UserHandler struct {
	userService userService
	media       mediaStore
	logger      logger.Logger
}

func NewUser(users userService, media mediaStore, l logger.Logger) *UserHandler {
	return &UserHandler{userService: users, media: media, logger: l}
}

// register accepts a multipart form: text fields plus an avatar file
// (required) and a cover image file (optional). Images are stored
// first, the user record keeps their URLs only.
func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"fullName" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type RegisterSuccessResponse struct {
		User UserResponse `json:"user"`
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.ServiceError(w, "Expected multipart form", http.StatusBadRequest)
		return
	}

	data := RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		FullName: r.FormValue("fullName"),
		Password: r.FormValue("password"),
	}
	if err := render.Validate(w, data); err != nil {
		return
	}

	avatarURL, err := h.uploadFormFile(r, "avatar")
	if err != nil {
		render.ServiceError(w, "Avatar is required", http.StatusBadRequest)
		return
	}

	// Cover image is optional, ignore its absence
	coverURL, _ := h.uploadFormFile(r, "coverImage")

	created, err := h.userService.Register(r.Context(), user.RegisterParams{
		Username:   data.Username,
		Email:      data.Email,
		FullName:   data.FullName,
		Password:   data.Password,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User with given email or username already exists", http.StatusConflict)
		default:
			h.logger.Error("register failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, RegisterSuccessResponse{User: toUserResponse(created)}, http.StatusCreated)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	u, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	render.JSON(w, toUserResponse(u))
}

func (h *UserHandler) updateAccount(w http.ResponseWriter, r *http.Request) {
	type UpdateAccountRequest struct {
		FullName string `json:"fullName" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
	}

	u, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[UpdateAccountRequest](w, r)
	if err != nil {
		return
	}

	updated, err := h.userService.UpdateAccount(r.Context(), u.ID, data.FullName, data.Email)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Email already taken", http.StatusConflict)
		default:
			h.logger.Error("account update failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toUserResponse(updated))
}

func (h *UserHandler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.ServiceError(w, "Expected multipart form", http.StatusBadRequest)
		return
	}

	url, err := h.uploadFormFile(r, "avatar")
	if err != nil {
		render.ServiceError(w, "Avatar file is missing", http.StatusBadRequest)
		return
	}

	updated, err := h.userService.UpdateAvatar(r.Context(), u.ID, url)
	if err != nil {
		h.logger.Error("avatar update failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toUserResponse(updated))
}

func (h *UserHandler) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	u, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.ServiceError(w, "Expected multipart form", http.StatusBadRequest)
		return
	}

	url, err := h.uploadFormFile(r, "coverImage")
	if err != nil {
		render.ServiceError(w, "Cover image file is missing", http.StatusBadRequest)
		return
	}

	updated, err := h.userService.UpdateCoverImage(r.Context(), u.ID, url)
	if err != nil {
		h.logger.Error("cover image update failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toUserResponse(updated))
}

// uploadFormFile stores the named multipart file and returns its URL
func (h *UserHandler) uploadFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return h.media.Upload(r.Context(), file, contentType)
}
