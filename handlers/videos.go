package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"fknsrs.biz/p/sorm"
	"fknsrs.biz/p/sorm/qsorm"
	sb "fknsrs.biz/p/sqlbuilder"
	"github.com/gorilla/mux"

	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/ctxjobqueue"
	"fknsrs.biz/p/ytsnap/internal/ctxtemplate"
	"fknsrs.biz/p/ytsnap/internal/httputil"
	"fknsrs.biz/p/ytsnap/internal/jobqueue"
	"fknsrs.biz/p/ytsnap/internal/queuenames"
	"fknsrs.biz/p/ytsnap/models"
)

func Videos(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var condition sb.AsExpr
	order := []sb.AsOrderingTerm{sb.OrderDesc(models.VideoSearchTable.C("VideoCreatedAt"))}

	if q != "" {
		condition = sb.BinaryOperator("match", sb.Literal("video_search"), sb.Bind(q))
		order = []sb.AsOrderingTerm{sb.OrderDesc(sb.Literal("rank"))}
	}

	var videos []models.VideoSearch
	if err := qsorm.FindWhere(
		r.Context(),
		ctxdb.GetDB(r.Context()),
		&videos,
		condition,
		order,
		sb.OffsetLimit(nil, sb.Literal("1000")),
	); err != nil {
		panic(err)
	}

	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_videos", map[string]interface{}{
		"Q":      q,
		"Videos": videos,
	}); err != nil {
		panic(err)
	}
}

func Video(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var video models.Video
	if err := sorm.FindFirstWhere(r.Context(), ctxdb.GetDB(r.Context()), &video, "where id = ? or external_id = ?", vars["id"], vars["id"]); err != nil {
		if err == sql.ErrNoRows {
			httputil.NotFound(rw, r)
			return
		}

		panic(err)
	}

	var channel models.Channel
	if err := sorm.FindFirstWhere(r.Context(), ctxdb.GetDB(r.Context()), &channel, "where id = ? or external_id = ?", video.ChannelID, video.ChannelExternalID); err != nil {
		if err != sql.ErrNoRows {
			panic(err)
		}
	}

	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_video", map[string]interface{}{
		"Video":   video,
		"Channel": channel,
	}); err != nil {
		panic(err)
	}
}

// VideoRefreshAction re-queues a single video's detail fetch without
// touching the rest of the channel.
func VideoRefreshAction(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var video models.Video
	if err := sorm.FindFirstWhere(r.Context(), ctxdb.GetDB(r.Context()), &video, "where id = ? or external_id = ?", vars["id"], vars["id"]); err != nil {
		if err == sql.ErrNoRows {
			httputil.NotFound(rw, r)
			return
		}

		panic(err)
	}

	if err := ctxdb.UsingTx(r.Context(), nil, func(ctx context.Context, tx *sql.Tx) error {
		return ctxjobqueue.Add(ctx, tx, &jobqueue.Job{
			QueueName: queuenames.VideoRefresh,
			Payload:   video.ExternalID,
		})
	}); err != nil {
		panic(err)
	}

	httputil.RedirectWithSuccess(rw, r, "/jobs", "Video "+video.ExternalID+" will be refreshed soon.")
}
