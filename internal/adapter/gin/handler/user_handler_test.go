package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecase "user-api-service/internal/usecase/user"
	pkgerrors "user-api-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.UserUsecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) RegisterUser(ctx context.Context, req usecase.RegisterUserRequest) (*usecase.RegisterUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RegisterUserResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) error {
	return m.Called(ctx, req).Error(0)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	h := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/usuarios", h.ListUsers)
	r.GET("/usuarios/:id", h.GetUser)
	r.POST("/registro", h.Register)
	r.POST("/login", h.Login)
	r.PUT("/usuarios/:id", h.UpdateUser)
	r.DELETE("/usuarios/:id", h.DeleteUser)
	return r, mockUsecase
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

var storeErr = pkgerrors.NewStoreError("op", errors.New("connection refused"))

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{Users: []usecase.User{
			{ID: 1, Name: "Ana", Email: "ana@x.com"},
		}}, nil)

		w := do(r, http.MethodGet, "/usuarios", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id_user":1,"nombre":"Ana","email":"ana@x.com"}]`, w.Body.String())
	})

	t.Run("Empty list is an array", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(&usecase.ListUsersResponse{}, nil)

		w := do(r, http.MethodGet, "/usuarios", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything).Return(nil, storeErr)

		w := do(r, http.MethodGet, "/usuarios", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error al obtener registros", decodeError(t, w))
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 1}).
			Return(&usecase.GetUserResponse{User: usecase.User{ID: 1, Name: "Ana", Email: "ana@x.com"}}, nil)

		w := do(r, http.MethodGet, "/usuarios/1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id_user":1,"nombre":"Ana","email":"ana@x.com"}`, w.Body.String())
	})

	t.Run("Not found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 9}).
			Return(nil, pkgerrors.NewNotFoundError("user", ""))

		w := do(r, http.MethodGet, "/usuarios/9", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Registro no encontrado", decodeError(t, w))
	})

	t.Run("Wrapped not found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: 9}).
			Return(nil, fmt.Errorf("get user: %w", pkgerrors.NewNotFoundError("user", "")))

		w := do(r, http.MethodGet, "/usuarios/9", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Registro no encontrado", decodeError(t, w))
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := do(r, http.MethodGet, "/usuarios/abc", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockUsecase.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, mock.Anything).Return(nil, storeErr)

		w := do(r, http.MethodGet, "/usuarios/1", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error al obtener el registro", decodeError(t, w))
	})
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("RegisterUser", mock.Anything, usecase.RegisterUserRequest{
			Name: "Ana", Email: "ana@x.com", Password: "p1",
		}).Return(&usecase.RegisterUserResponse{ID: 5}, nil)

		w := do(r, http.MethodPost, "/registro", `{"nombre":"Ana","email":"ana@x.com","contraseña":"p1"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"Usuario creado exitosamente","userId":5}`, w.Body.String())
	})

	t.Run("Missing fields", func(t *testing.T) {
		bodies := []string{
			`{"email":"ana@x.com","contraseña":"p1"}`,
			`{"nombre":"Ana","contraseña":"p1"}`,
			`{"nombre":"Ana","email":"ana@x.com"}`,
			`{"nombre":"","email":"ana@x.com","contraseña":"p1"}`,
			`not json`,
		}
		for _, body := range bodies {
			r, mockUsecase := setupTest(t)

			w := do(r, http.MethodPost, "/registro", body)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "Todos los campos son requeridos", decodeError(t, w))
			mockUsecase.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
		}
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("RegisterUser", mock.Anything, mock.Anything).Return(nil, storeErr)

		w := do(r, http.MethodPost, "/registro", `{"nombre":"Ana","email":"ana@x.com","contraseña":"p1"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error al crear usuario", decodeError(t, w))
	})

	t.Run("Hash failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("RegisterUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewInternalError("hash password", errors.New("encoding")))

		w := do(r, http.MethodPost, "/registro", `{"nombre":"Ana","email":"ana@x.com","contraseña":"p1"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error en el servidor", decodeError(t, w))
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{Email: "ana@x.com", Password: "p1"}).
			Return(&usecase.LoginResponse{User: usecase.User{ID: 5, Name: "Ana", Email: "ana@x.com"}}, nil)

		w := do(r, http.MethodPost, "/login", `{"email":"ana@x.com","contraseña":"p1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Login exitoso","user":{"id":5,"nombre":"Ana","email":"ana@x.com"}}`, w.Body.String())
	})

	t.Run("Missing fields", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := do(r, http.MethodPost, "/login", `{"email":"ana@x.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email y contraseña son requeridos", decodeError(t, w))
		mockUsecase.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Login", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUnauthorizedError("invalid credentials"))

		w := do(r, http.MethodPost, "/login", `{"email":"ana@x.com","contraseña":"bad"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Credenciales inválidas", decodeError(t, w))
	})

	t.Run("Server error", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("Login", mock.Anything, mock.Anything).Return(nil, storeErr)

		w := do(r, http.MethodPost, "/login", `{"email":"ana@x.com","contraseña":"p1"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error en el servidor", decodeError(t, w))
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Partial update", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: 3, Name: "Ana María"}).Return(nil)

		w := do(r, http.MethodPut, "/usuarios/3", `{"nombre":"Ana María"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Usuario actualizado exitosamente"}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Non-numeric id is a no-op", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := do(r, http.MethodPut, "/usuarios/abc", `{"nombre":"x"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("Missing body is an empty update", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, usecase.UpdateUserRequest{ID: 3}).Return(nil)

		w := do(r, http.MethodPut, "/usuarios/3", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Usuario actualizado exitosamente"}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Invalid body", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w := do(r, http.MethodPut, "/usuarios/3", `{`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cuerpo de la solicitud inválido", decodeError(t, w))
		mockUsecase.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(storeErr)

		w := do(r, http.MethodPut, "/usuarios/3", `{"email":"a@b.c"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error al actualizar", decodeError(t, w))
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: 99}).Return(nil)

		w := do(r, http.MethodDelete, "/usuarios/99", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Usuario eliminado exitosamente"}`, w.Body.String())
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, mock.Anything).Return(storeErr)

		w := do(r, http.MethodDelete, "/usuarios/99", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Error al eliminar", decodeError(t, w))
	})
}
