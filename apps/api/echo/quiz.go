package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/analytics"
	"github.com/trezcool/mtihani/core/attempt"
	"github.com/trezcool/mtihani/core/quiz"
	"github.com/trezcool/mtihani/services/metrics"
)

type quizApi struct {
	svc          *quiz.Service
	attemptSvc   *attempt.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
}

func registerQuizAPI(g *echo.Group, deps ServerDeps) {
	api := quizApi{
		svc:          deps.QuizSvc,
		attemptSvc:   deps.AttemptSvc,
		analyticsSvc: deps.AnalyticsSvc,
		validate:     deps.Validate,
	}

	qg := g.Group("/quizzes")
	qg.GET("", api.query)
	qg.POST("", api.create, authorMiddleware())

	// detail endpoints
	qg.GET("/:id", api.retrieve)
	qg.GET("/:id/subjects/audit", api.auditSubjects, authorMiddleware())

	// attempt endpoints
	qg.GET("/:id/attempt", api.openAttempt)
	qg.PUT("/:id/responses/:questionID", api.submit)
	qg.GET("/:id/result", api.result)
	qg.GET("/:id/completions", api.completions, authorMiddleware())
	qg.DELETE("/:id/completions/:respondentID", api.clearCompletion, adminMiddleware())
}

// Handlers

func (api *quizApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	quizzes, err := api.svc.Query(ctx.Request().Context(), bindQuizFilter(ctx), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	author, err := contextRespondent(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context respondent")
	}

	qz, err := api.svc.Create(ctx.Request().Context(), author, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	r, err := contextRespondent(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context respondent")
	}
	qz, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz")
	}

	// respondents never see the answer key
	if !r.IsAuthor() {
		qz = qz.WithoutAnswers()
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) auditSubjects(ctx echo.Context) error {
	suspects, err := api.svc.AuditSubjects(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "auditing subjects")
	}
	return ctx.JSON(http.StatusOK, suspects)
}

func (api *quizApi) openAttempt(ctx echo.Context) error {
	r, err := contextRespondent(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context respondent")
	}
	s, err := api.attemptSvc.Open(ctx.Request().Context(), r, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening attempt")
	}
	return ctx.JSON(http.StatusOK, s.View())
}

func (api *quizApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	r, err := contextRespondent(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context respondent")
	}

	s, resp, err := api.attemptSvc.Submit(ctx.Request().Context(), r, ctx.Param("id"), ctx.Param("questionID"), data.Letter)
	if err != nil {
		return errors.Wrap(err, "submitting response")
	}

	metrics.ResponsesSubmitted.Inc()
	if s.Mode() == attempt.Completed {
		metrics.QuizzesCompleted.Inc()
	}
	return ctx.JSON(http.StatusOK, SubmitResponse{Response: resp, Attempt: s.View()})
}

func (api *quizApi) result(ctx echo.Context) error {
	r, err := contextRespondent(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context respondent")
	}

	timer := prometheus.NewTimer(metrics.ScoringSeconds)
	sum, err := api.analyticsSvc.Result(ctx.Request().Context(), r, ctx.Param("id"))
	timer.ObserveDuration()
	if err != nil {
		return errors.Wrap(err, "getting result")
	}

	metrics.ResultsServed.Inc()
	return ctx.JSON(http.StatusOK, sum)
}

func (api *quizApi) completions(ctx echo.Context) error {
	comps, err := api.attemptSvc.Completions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing completions")
	}
	return ctx.JSON(http.StatusOK, comps)
}

func (api *quizApi) clearCompletion(ctx echo.Context) error {
	err := api.attemptSvc.ClearCompletion(ctx.Request().Context(), ctx.Param("respondentID"), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "clearing completion")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	SubmitRequest struct {
		Letter string `json:"letter" validate:"required"`
	}

	SubmitResponse struct {
		Response attempt.Response `json:"response"`
		Attempt  attempt.View     `json:"attempt"`
	}
)

func (sr *SubmitRequest) Validate(validate *validator.Validate) error {
	sr.Letter = core.CleanString(sr.Letter, true /* lower */)
	return validate.Struct(sr)
}
