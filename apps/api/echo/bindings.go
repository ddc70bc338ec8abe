package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/folder"
	"github.com/trezcool/mtihani/core/quiz"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// optionalParam returns nil for a missing or blank query param.
func optionalParam(ctx echo.Context, name string) *string {
	return core.StringPtr(core.CleanString(ctx.QueryParam(name)))
}

// bindQuizFilter reads ?folder=&year=&search=. An unparsable year matches nothing.
func bindQuizFilter(ctx echo.Context) quiz.QueryFilter {
	filter := quiz.QueryFilter{
		FolderID: optionalParam(ctx, "folder"),
		Search:   ctx.QueryParam("search"),
	}
	if y := core.CleanString(ctx.QueryParam("year")); y != "" {
		if year, err := strconv.Atoi(y); err == nil {
			filter.Year = year
		} else {
			filter.Year = -1
		}
	}
	return filter
}

// bindFolderKind reads ?kind=, quiz folders by default.
func bindFolderKind(ctx echo.Context) folder.Kind {
	if kind := folder.Kind(core.CleanString(ctx.QueryParam("kind"), true /* lower */)); kind != "" {
		return kind
	}
	return folder.KindQuiz
}
