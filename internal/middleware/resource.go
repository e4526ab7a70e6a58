package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/consultant-ledger/internal/constants"
	apierrors "github.com/yukikurage/consultant-ledger/internal/errors"
	"github.com/yukikurage/consultant-ledger/internal/logging"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/repository"
	"gorm.io/gorm"
)

// LoadTask loads the task named by the :id parameter into the context.
func LoadTask(repo repository.TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := c.Param("id")
		if taskID == "" {
			apierrors.InvalidFormat(c, "Invalid task ID")
			c.Abort()
			return
		}

		task, err := repo.FindByID(c.Request.Context(), taskID)
		if err != nil {
			abortLookup(c, err, "Task not found", "task_id", taskID)
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// LoadClient loads the client named by the :id parameter into the context.
func LoadClient(repo repository.ClientRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("id")
		if clientID == "" {
			apierrors.InvalidFormat(c, "Invalid client ID")
			c.Abort()
			return
		}

		client, err := repo.FindByID(c.Request.Context(), clientID)
		if err != nil {
			abortLookup(c, err, "Client not found", "client_id", clientID)
			return
		}

		c.Set(constants.ContextKeyClient, *client)
		c.Next()
	}
}

// GetTask retrieves the task set by LoadTask.
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}

// GetClient retrieves the client set by LoadClient.
func GetClient(c *gin.Context) (models.Client, bool) {
	v, exists := c.Get(constants.ContextKeyClient)
	if !exists {
		return models.Client{}, false
	}
	client, ok := v.(models.Client)
	return client, ok
}

func abortLookup(c *gin.Context, err error, notFound, field, id string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.NotFound(c, notFound)
	} else {
		logging.Logger.WithField(field, id).Errorf("Lookup failed: %v", err)
		apierrors.InternalError(c, "")
	}
	c.Abort()
}
