package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/monoculum/formam"

	"fknsrs.biz/p/ytsnap/internal/ctxconfig"
	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/ctxjobqueue"
	"fknsrs.biz/p/ytsnap/internal/ctxtemplate"
	"fknsrs.biz/p/ytsnap/internal/httputil"
	"fknsrs.biz/p/ytsnap/internal/jobqueue"
	"fknsrs.biz/p/ytsnap/internal/queuenames"
	"fknsrs.biz/p/ytsnap/internal/ytutil"
)

func Add(rw http.ResponseWriter, r *http.Request) {
	if err := ctxtemplate.ExecuteTemplateIntoResponse(r, rw, "page_add", map[string]interface{}{}); err != nil {
		panic(err)
	}
}

func AddAction(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		panic(err)
	}

	var input struct {
		URLOrHandle string `formam:"url_or_handle"`
		MaxVideos   int    `formam:"max_videos"`
	}

	if err := formam.Decode(r.PostForm, &input); err != nil {
		panic(err)
	}

	handle, err := ytutil.ExtractChannelHandle(input.URLOrHandle)
	if err != nil {
		httputil.RedirectWithError(rw, r, "/add", "Could not extract a channel handle from input: "+err.Error())
		return
	}

	maxVideos := input.MaxVideos
	if maxVideos == 0 {
		maxVideos = ctxconfig.GetConfig(r.Context()).ScrapeMaxVideos
	}
	if maxVideos < 1 || maxVideos > 100 {
		httputil.RedirectWithError(rw, r, "/add", "Video count must be between 1 and 100.")
		return
	}

	if err := ctxdb.UsingTx(r.Context(), nil, func(ctx context.Context, tx *sql.Tx) error {
		return ctxjobqueue.Add(ctx, tx, &jobqueue.Job{
			QueueName: queuenames.ChannelScrape,
			Payload: jobqueue.FormatPayload(handle, url.Values{
				"max_videos": []string{strconv.Itoa(maxVideos)},
			}),
		})
	}); err != nil {
		panic(err)
	}

	httputil.RedirectWithSuccess(rw, r, "/jobs", fmt.Sprintf("Channel @%s will be scraped soon.", handle))
}
