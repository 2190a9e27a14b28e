package plan

import (
	"context"
	"errors"
	"net/http"

	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/allocator"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
	"github.com/LambdaTest/forkplan/pkg/planqueue"
	"github.com/gin-gonic/gin"
)

type planInput struct {
	ForkCount      int            `json:"fork_count" binding:"required,min=1"`
	MatchMode      core.MatchMode `json:"match_mode" binding:"omitempty,oneof=class method"`
	StrictPrefixes bool           `json:"strict_prefixes"`
	Sources        []sourceInput  `json:"sources" binding:"required,min=1,dive"`
	// Timings replaces the configured timing history when present, even if empty.
	Timings []core.TestTiming `json:"timings" binding:"omitempty,dive"`
	Publish bool              `json:"publish"`
}

type sourceInput struct {
	Task     core.TaskID `json:"task" binding:"required"`
	Prefixes []string    `json:"prefixes" binding:"required,min=1,dive,required"`
}

type planOutput struct {
	PlanID  string                `json:"plan_id,omitempty"`
	Summary core.TestPlanSummary  `json:"summary"`
	Forks   []core.ForkAssignment `json:"forks"`
}

// HandleCreate generates a test plan for the requested sources.
func HandleCreate(cfg *config.Config,
	timingStore core.TimingStore,
	publisher *planqueue.Publisher,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqBody := new(planInput)
		if err := c.ShouldBindJSON(reqBody); err != nil {
			logger.Errorf("error while binding json, error: %v", err)
			c.JSON(http.StatusBadRequest, errs.ValidationErr(err))
			return
		}
		if reqBody.Publish && publisher == nil {
			c.JSON(http.StatusBadRequest, errs.ErrPublishingDisabled)
			return
		}
		matchMode := reqBody.MatchMode
		if matchMode == "" {
			matchMode = core.MatchMode(cfg.MatchMode)
		}
		store := timingStore
		if reqBody.Timings != nil {
			timings := reqBody.Timings
			store = core.TimingStoreFunc(func(ctx context.Context) ([]core.TestTiming, error) {
				return timings, nil
			})
		}

		testAllocator, err := allocator.New(reqBody.ForkCount, store, logger,
			allocator.WithMatchMode(matchMode),
			allocator.WithStrictPrefixes(reqBody.StrictPrefixes || cfg.StrictPrefixes))
		if err != nil {
			c.JSON(http.StatusBadRequest, errs.New(err.Error()))
			return
		}
		tasks := make([]core.TaskID, 0, len(reqBody.Sources))
		seen := make(map[core.TaskID]struct{}, len(reqBody.Sources))
		for _, source := range reqBody.Sources {
			prefixes := source.Prefixes
			if err := testAllocator.AddSource(func() []string { return prefixes }, source.Task); err != nil {
				logger.Errorf("failed to add source for task %s, error: %v", source.Task, err)
				c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
				return
			}
			if _, ok := seen[source.Task]; !ok {
				seen[source.Task] = struct{}{}
				tasks = append(tasks, source.Task)
			}
		}
		if err := testAllocator.GenerateTestPlan(c.Request.Context()); err != nil {
			if errors.Is(err, errs.ErrOverlappingPrefixes) {
				c.JSON(http.StatusBadRequest, errs.New(err.Error()))
				return
			}
			logger.Errorf("failed to generate test plan, error: %v", err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		generated, err := testAllocator.Plan()
		if err != nil {
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		out := planOutput{Summary: generated.Summary(), Forks: generated.Forks()}
		if reqBody.Publish {
			planID, err := publisher.Publish(testAllocator, tasks)
			if err != nil {
				logger.Errorf("failed to publish test plan, error: %v", err)
				c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
				return
			}
			out.PlanID = planID
		}
		c.JSON(http.StatusOK, out)
	}
}
