package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"fknsrs.biz/p/sorm"
	"fknsrs.biz/p/sorm/qsorm"
	sb "fknsrs.biz/p/sqlbuilder"
	"github.com/gorilla/mux"

	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/ctxtemplate"
	"fknsrs.biz/p/ytsnap/internal/httputil"
	"fknsrs.biz/p/ytsnap/internal/ytscrape"
	"fknsrs.biz/p/ytsnap/models"
)

func Channels(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var condition sb.AsExpr
	order := []sb.AsOrderingTerm{sb.OrderDesc(models.ChannelSearchTable.C("ChannelCreatedAt"))}

	if q != "" {
		condition = sb.BinaryOperator("match", sb.Literal("channel_search"), sb.Bind(q))
		order = []sb.AsOrderingTerm{sb.OrderDesc(sb.Literal("rank"))}
	}

	var channels []models.ChannelSearch
	if err := qsorm.FindWhere(
		r.Context(),
		ctxdb.GetDB(r.Context()),
		&channels,
		condition,
		order,
		sb.OffsetLimit(nil, sb.Literal("1000")),
	); err != nil {
		panic(err)
	}

	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_channels", map[string]interface{}{
		"Q":        q,
		"Channels": channels,
	}); err != nil {
		panic(err)
	}
}

func Channel(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var channel models.ChannelSearch
	if err := sorm.FindFirstWhere(r.Context(), ctxdb.GetDB(r.Context()), &channel, "where channel_id = ? or channel_external_id = ? or channel_handle = ?", vars["id"], vars["id"], vars["id"]); err != nil {
		if err == sql.ErrNoRows {
			httputil.NotFound(rw, r)
			return
		}

		panic(err)
	}

	var videos []models.VideoSearch
	if err := sorm.FindWhere(r.Context(), ctxdb.GetDB(r.Context()), &videos, "where channel_id = ? order by video_id asc", channel.ChannelID); err != nil {
		panic(err)
	}

	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_channel", map[string]interface{}{
		"Channel": channel,
		"Videos":  videos,
	}); err != nil {
		panic(err)
	}
}

// ChannelSnapshotJSON serves the channel's most recent scrape as a
// single JSON document, row order matching the listing order the
// scrape saw. Fields that never resolved render as null, not zero.
func ChannelSnapshotJSON(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var channel models.Channel
	if err := sorm.FindFirstWhere(r.Context(), ctxdb.GetDB(r.Context()), &channel, "where id = ? or external_id = ? or handle = ?", vars["id"], vars["id"], vars["id"]); err != nil {
		if err == sql.ErrNoRows {
			httputil.NotFound(rw, r)
			return
		}

		panic(err)
	}

	var videos []models.Video
	if err := sorm.FindWhere(r.Context(), ctxdb.GetDB(r.Context()), &videos, "where channel_id = ? order by id asc", channel.ID); err != nil {
		panic(err)
	}

	snapshot := ytscrape.ChannelSnapshot{
		ChannelID:    channel.ExternalID,
		ChannelTitle: channel.Title,
		Videos:       make([]ytscrape.VideoRecord, 0, len(videos)),
	}

	for _, v := range videos {
		snapshot.Videos = append(snapshot.Videos, ytscrape.VideoRecord{
			VideoID:         v.ExternalID,
			Title:           v.Title,
			Description:     v.Description,
			Transcript:      v.Transcript,
			DurationSeconds: v.DurationSeconds,
			ReleaseDate:     v.ReleaseDate,
			ViewCount:       v.ViewCount,
			LikeCount:       v.LikeCount,
			CommentCount:    v.CommentCount,
			VideoURL:        v.VideoURL,
			Thumbnail:       v.Thumbnail,
			PublishedText:   v.PublishedText,
		})
	}

	rw.Header().Set("content-type", "application/json; charset=utf-8")

	enc := json.NewEncoder(rw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		panic(err)
	}
}
