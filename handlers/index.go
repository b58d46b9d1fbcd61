package handlers

import (
	"net/http"

	"fknsrs.biz/p/sorm/qsorm"
	sb "fknsrs.biz/p/sqlbuilder"

	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/ctxtemplate"
	"fknsrs.biz/p/ytsnap/models"
)

func Index(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var channelsCondition sb.AsExpr
	channelsOrder := []sb.AsOrderingTerm{sb.OrderDesc(models.ChannelSearchTable.C("ChannelCreatedAt"))}
	var videosCondition sb.AsExpr
	videosOrder := []sb.AsOrderingTerm{sb.OrderDesc(models.VideoSearchTable.C("VideoCreatedAt"))}

	if q != "" {
		channelsCondition = sb.BinaryOperator("match", sb.Literal("channel_search"), sb.Bind(q))
		channelsOrder = []sb.AsOrderingTerm{sb.OrderDesc(sb.Literal("rank"))}
		videosCondition = sb.BinaryOperator("match", sb.Literal("video_search"), sb.Bind(q))
		videosOrder = []sb.AsOrderingTerm{sb.OrderDesc(sb.Literal("rank"))}
	}

	var channels []models.ChannelSearch
	if err := qsorm.FindWhere(
		r.Context(),
		ctxdb.GetDB(r.Context()),
		&channels,
		channelsCondition,
		channelsOrder,
		sb.OffsetLimit(nil, sb.Literal("50")),
	); err != nil {
		panic(err)
	}

	var videos []models.VideoSearch
	if err := qsorm.FindWhere(
		r.Context(),
		ctxdb.GetDB(r.Context()),
		&videos,
		videosCondition,
		videosOrder,
		sb.OffsetLimit(nil, sb.Literal("200")),
	); err != nil {
		panic(err)
	}

	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_index", map[string]interface{}{
		"Q":        q,
		"Channels": channels,
		"Videos":   videos,
	}); err != nil {
		panic(err)
	}
}
