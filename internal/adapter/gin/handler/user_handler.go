package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api-service/internal/usecase/user"
	apperrors "user-api-service/pkg/errors"
	"user-api-service/pkg/logger"
)

// Client-facing messages. Internal detail is logged, never returned.
const (
	msgListFailed     = "Error al obtener registros"
	msgNotFound       = "Registro no encontrado"
	msgGetFailed      = "Error al obtener el registro"
	msgFieldsRequired = "Todos los campos son requeridos"
	msgCreateFailed   = "Error al crear usuario"
	msgServerError    = "Error en el servidor"
	msgCredsRequired  = "Email y contraseña son requeridos"
	msgBadCredentials = "Credenciales inválidas"
	msgUpdateFailed   = "Error al actualizar"
	msgDeleteFailed   = "Error al eliminar"
	msgInvalidBody    = "Cuerpo de la solicitud inválido"
	msgUserCreated    = "Usuario creado exitosamente"
	msgLoginOK        = "Login exitoso"
	msgUserUpdated    = "Usuario actualizado exitosamente"
	msgUserDeleted    = "Usuario eliminado exitosamente"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest is the body of POST /api/registro.
type RegisterRequest struct {
	Name     string `json:"nombre" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"contraseña" binding:"required"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"contraseña" binding:"required"`
}

// UpdateRequest is the body of PUT /api/usuarios/:id. Every field is optional.
type UpdateRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"contraseña"`
}

// UserRecord is a user as returned by the list and get endpoints.
type UserRecord struct {
	ID    int64  `json:"id_user"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

// LoginUser is the identity returned on successful login.
type LoginUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
}

// RegisterResponse is returned with 201 on successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse is returned with 200 on successful login.
type LoginResponse struct {
	Message string    `json:"message"`
	User    LoginUser `json:"user"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListUsers handles GET /api/usuarios
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "list users", err, msgListFailed)
		return
	}

	records := make([]UserRecord, len(resp.Users))
	for i, u := range resp.Users {
		records[i] = toRecord(u)
	}
	c.JSON(http.StatusOK, records)
}

// GetUser handles GET /api/usuarios/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		// a key that cannot be numeric cannot match any row
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		if apperrors.StatusCode(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
			return
		}
		h.fail(c, "get user", err, msgGetFailed)
		return
	}

	c.JSON(http.StatusOK, toRecord(resp.User))
}

// Register handles POST /api/registro
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reqLog(c).Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgFieldsRequired})
		return
	}

	resp, err := h.uc.RegisterUser(c.Request.Context(), user.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case apperrors.StatusCode(err) == http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgFieldsRequired})
		case apperrors.IsStoreError(err):
			h.fail(c, "register user", err, msgCreateFailed)
		default:
			h.fail(c, "register user", err, msgServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{Message: msgUserCreated, UserID: resp.ID})
}

// Login handles POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reqLog(c).Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgCredsRequired})
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), user.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		switch apperrors.StatusCode(err) {
		case http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgCredsRequired})
		case http.StatusUnauthorized:
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgBadCredentials})
		default:
			h.fail(c, "login", err, msgServerError)
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: msgLoginOK,
		User: LoginUser{
			ID:    resp.User.ID,
			Name:  resp.User.Name,
			Email: resp.User.Email,
		},
	})
}

// UpdateUser handles PUT /api/usuarios/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.reqLog(c).Warn("invalid update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		c.JSON(http.StatusOK, MessageResponse{Message: msgUserUpdated})
		return
	}

	err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, "update user", err, msgUpdateFailed)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgUserUpdated})
}

// DeleteUser handles DELETE /api/usuarios/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		c.JSON(http.StatusOK, MessageResponse{Message: msgUserDeleted})
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.fail(c, "delete user", err, msgDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgUserDeleted})
}

// bindOptionalJSON binds the request body into dst, leaving dst untouched when
// the body is absent. Malformed JSON is still an error.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseID reads the :id path parameter. Non-numeric ids are reported with ok == false.
func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.reqLog(c).Debug("non-numeric user id", zap.String("id", raw))
		return 0, false
	}
	return id, true
}

// fail logs err and writes a 500 carrying only the short client message.
func (h *UserHandler) fail(c *gin.Context, op string, err error, message string) {
	h.reqLog(c).Error(op+" failed", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

func (h *UserHandler) reqLog(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}

func toRecord(u user.User) UserRecord {
	return UserRecord{ID: u.ID, Name: u.Name, Email: u.Email}
}
