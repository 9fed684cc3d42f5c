// Package tour proxies the interactive product tour's daemon calls.
package tour

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"lbry-tech/internal/alert"
	"lbry-tech/internal/message"
)

const (
	MethodPublish    = "publish"
	MethodResolve    = "resolve"
	MethodWalletSend = "wallet_send"

	// publishBid is the fixed amount staked on every tour publish.
	publishBid = "0.001"
)

// ResultSelector is the tour panel every daemon response renders into.
// The page has a single result panel shared by both steps.
const ResultSelector = "#step1-result"

// User-visible notifications.
const (
	ErrUnallowedMethod = "Unallowed resolve method for tutorial"
	ErrInvalidClaim    = "Invalid claim ID for tutorial"
	ErrUploadFailed    = "Image upload failed"
)

// AllowedMethods are the daemon methods a tour visitor may call.
var AllowedMethods = []string{MethodPublish, MethodResolve, MethodWalletSend}

// AllowedClaims sandboxes step one to known demo content.
var AllowedClaims = []string{
	"fortnite-top-stream-moments-nickatnyte",
	"hellolbry",
	"itsadisaster",
	"six",
	"unbubbled1-1",
}

// Daemon is the subset of *Client the gateway needs.
type Daemon interface {
	Call(ctx context.Context, params url.Values) ([]byte, error)
	UploadImage(ctx context.Context, filePath string) (*UploadResult, error)
}

// Gateway validates tour requests and relays them to the daemon.
type Gateway struct {
	daemon     Daemon
	imagesPath string
	alerts     *alert.Reporter
	logger     *slog.Logger
}

// NewGateway creates a Gateway. imagesPath is prefixed to every publish
// file path before upload.
func NewGateway(daemon Daemon, imagesPath string, alerts *alert.Reporter, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if alerts == nil {
		alerts = alert.NewReporter(nil, logger)
	}
	return &Gateway{
		daemon:     daemon,
		imagesPath: imagesPath,
		alerts:     alerts,
		logger:     logger,
	}
}

// FetchMetadata handles one "fetch metadata" message. Malformed requests
// get no response; disallowed ones get an error notification.
func (g *Gateway) FetchMetadata(ctx context.Context, req message.TourRequest, out message.Responder) {
	if !wellFormed(req) {
		return
	}

	if !slices.Contains(AllowedMethods, req.Method) {
		out.Send(message.Notification(ErrUnallowedMethod))
		return
	}

	if req.Step == 1 && !slices.Contains(AllowedClaims, req.Claim) {
		out.Send(message.Notification(ErrInvalidClaim))
		return
	}

	params := url.Values{}
	params.Set("method", req.Method)
	if req.Step == 1 {
		params.Set("uri", req.Claim)
	}

	if req.Method == MethodPublish {
		if req.Data == nil {
			return
		}
		filename, ok := g.upload(ctx, g.imagesPath+req.Data.FilePath, out)
		if !ok {
			return
		}
		setPublishParams(params, req.Data, filename)
	}

	res, err := g.daemon.Call(ctx, params)
	if err != nil {
		g.reportDaemonError(ctx, err)
		return
	}

	html, err := renderSuccess(req, res)
	if err != nil {
		g.logger.Error("render tour response", "error", err)
		return
	}

	out.Send(message.HTMLUpdate(ResultSelector, html))
}

// upload sends the image and returns the daemon-side filename.
func (g *Gateway) upload(ctx context.Context, filePath string, out message.Responder) (string, bool) {
	res, err := g.daemon.UploadImage(ctx, filePath)
	if err == nil && !res.OK() {
		err = errors.New("upload status " + strconv.Quote(res.Status))
	}
	if err != nil {
		out.Send(message.Notification(ErrUploadFailed))
		g.alerts.Report(ctx, alert.KindDaemon, err, "Someone attempted to publish a meme via the Tour")
		return "", false
	}
	return res.Filename, true
}

// reportDaemonError alerts ops. The visitor deliberately gets no response.
func (g *Gateway) reportDaemonError(ctx context.Context, err error) {
	var detail any = err
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		detail = string(rpcErr.Detail)
	}
	g.alerts.Report(ctx, alert.KindDaemon, detail, "Someone is going through the Tour")
}

func wellFormed(req message.TourRequest) bool {
	if req.Method == "" {
		return false
	}
	switch req.Step {
	case 1:
		return req.Claim != ""
	case 2:
		return req.Data != nil
	default:
		return false
	}
}

func setPublishParams(params url.Values, d *message.PublishData, filePath string) {
	params.Set("bid", publishBid)
	params.Set("description", d.Description)
	params.Set("file_path", filePath)
	params.Set("language", d.Language)
	params.Set("license", d.License)
	params.Set("name", d.Name)
	params.Set("nsfw", strconv.FormatBool(d.NSFW))
	params.Set("title", d.Title)
}
