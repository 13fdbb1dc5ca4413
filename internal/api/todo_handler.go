package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoshare-backend-go/internal/core"
	"todoshare-backend-go/internal/models"
)

// TodoHandler handles API endpoints related to todos.
type TodoHandler struct {
	todoService core.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(ts core.TodoService) *TodoHandler {
	return &TodoHandler{todoService: ts}
}

// mapTodoErrorToStatus maps errors from core.TodoService to HTTP status codes.
// Forbidden stays a bare "forbidden" regardless of cause, so a prober cannot
// tell a missing share from an insufficient one.
func mapTodoErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrValidation):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbidden.Error()}
	case errors.Is(err, core.ErrTodoNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrTodoNotFound.Error()}
	default:
		log.Printf("Internal Server Error: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// ListTodos handles GET /todos?owner=&category=
// Without an owner (or with the caller as owner) it lists the caller's own
// todos; with another owner it lists that owner's shared category.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	todos, err := h.todoService.List(c.Request.Context(), requester, c.Query("owner"), c.Query("category"))
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	if todos == nil {
		todos = []*models.Todo{}
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodo handles POST /todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), requester, req)
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo handles PATCH /todos/:todoId
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}
	todoID := c.Param("todoId")
	if todoID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Todo ID is required"})
		return
	}

	var req models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), requester, todoID, req)
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles DELETE /todos/:todoId
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}
	todoID := c.Param("todoId")
	if todoID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Todo ID is required"})
		return
	}

	ownerUID, err := h.todoService.Remove(c.Request.Context(), requester, todoID)
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Todo deleted successfully.",
		Data:    gin.H{"ownerUid": ownerUID},
	})
}

// DeleteCategory handles DELETE /todos?owner=&category=
// Removes every todo in the target owner's category.
func (h *TodoHandler) DeleteCategory(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Category is required"})
		return
	}

	deleted, err := h.todoService.RemoveByCategory(c.Request.Context(), requester, category, c.Query("owner"))
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}

// ClearCompletedRequest defines the request body for clearing completed todos.
type ClearCompletedRequest struct {
	Category string `json:"category,omitempty"`
	OwnerUID string `json:"ownerUid,omitempty"`
}

// ClearCompleted handles POST /todos/clear-completed
func (h *TodoHandler) ClearCompleted(c *gin.Context) {
	requester, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req ClearCompletedRequest
	// An empty body means "all of my own completed todos".
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	deleted, err := h.todoService.ClearCompleted(c.Request.Context(), requester, req.Category, req.OwnerUID)
	if err != nil {
		mapTodoErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
