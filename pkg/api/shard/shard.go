package shard

import (
	"net/http"

	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/seed"
	"github.com/LambdaTest/forkplan/pkg/shuffler"
	"github.com/gin-gonic/gin"
)

type shardInput struct {
	Tests []string `json:"tests" binding:"unique,dive,required"`
	Forks int      `json:"forks" binding:"required,min=1"`
	// Fork restricts the response to one fork when set.
	Fork *int `json:"fork" binding:"omitempty,min=0"`
	// Seed is used as is when set, otherwise it is derived from the build identity.
	Seed         *int64 `json:"seed"`
	Revision     string `json:"revision"`
	User         string `json:"user"`
	Task         string `json:"task"`
	SeedOverride int64  `json:"seed_override"`
}

type shardOutput struct {
	Seed  int64      `json:"seed"`
	Fork  *int       `json:"fork,omitempty"`
	Tests []string   `json:"tests,omitempty"`
	Forks [][]string `json:"forks,omitempty"`
}

// HandleCreate splits a flat list of tests uniformly across forks.
func HandleCreate(logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqBody := new(shardInput)
		if err := c.ShouldBindJSON(reqBody); err != nil {
			logger.Errorf("error while binding json, error: %v", err)
			c.JSON(http.StatusBadRequest, errs.ValidationErr(err))
			return
		}
		shuffleSeed := seed.Derive(reqBody.Revision, reqBody.User, reqBody.Task, reqBody.SeedOverride)
		if reqBody.Seed != nil {
			shuffleSeed = *reqBody.Seed
		}
		list := shuffler.New(reqBody.Tests)
		out := shardOutput{Seed: shuffleSeed}
		if reqBody.Fork != nil {
			tests, err := list.TestsForFork(*reqBody.Fork, reqBody.Forks, shuffleSeed)
			if err != nil {
				c.JSON(http.StatusBadRequest, errs.New(err.Error()))
				return
			}
			out.Fork = reqBody.Fork
			out.Tests = tests
			c.JSON(http.StatusOK, out)
			return
		}
		forks, err := list.Allocate(reqBody.Forks, shuffleSeed)
		if err != nil {
			c.JSON(http.StatusBadRequest, errs.New(err.Error()))
			return
		}
		logger.Debugf("allocated %d tests across %d forks with seed %d", list.Len(), reqBody.Forks, shuffleSeed)
		out.Forks = forks
		c.JSON(http.StatusOK, out)
	}
}
