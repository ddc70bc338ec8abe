package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
)

type folderApi struct {
	svc *folder.Service
}

func registerFolderAPI(g *echo.Group, svc *folder.Service) {
	api := folderApi{svc: svc}

	fg := g.Group("/folders")
	fg.GET("", api.children)
	fg.POST("", api.create, authorMiddleware())

	// detail endpoints
	fg.GET("/:id", api.retrieve)
	fg.GET("/:id/breadcrumb", api.breadcrumb)
	fg.PUT("/:id", api.update, authorMiddleware())
	fg.DELETE("/:id", api.destroy, authorMiddleware())
}

// Handlers

func (api *folderApi) children(ctx echo.Context) error {
	kind := bindFolderKind(ctx)
	if !kind.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be one of: quiz material"})
	}

	folders, err := api.svc.Children(ctx.Request().Context(), kind, optionalParam(ctx, "parent"))
	if err != nil {
		return errors.Wrap(err, "listing folder children")
	}
	return ctx.JSON(http.StatusOK, folders)
}

func (api *folderApi) retrieve(ctx echo.Context) error {
	f, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting folder")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *folderApi) breadcrumb(ctx echo.Context) error {
	id := ctx.Param("id")
	path, err := api.svc.Breadcrumb(ctx.Request().Context(), &id)
	if err != nil {
		return errors.Wrap(err, "resolving breadcrumb")
	}
	return ctx.JSON(http.StatusOK, path)
}

func (api *folderApi) create(ctx echo.Context) error {
	var data folder.NewFolder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFolder")
	}

	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating folder")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *folderApi) update(ctx echo.Context) error {
	var data folder.UpdateFolder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFolder")
	}

	f, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating folder")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *folderApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting folder")
	}
	return ctx.NoContent(http.StatusNoContent)
}
