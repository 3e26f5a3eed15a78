package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the slice of the Sheets API the writer needs.
type spreadsheetAPI interface {
	ensure(ctx context.Context, spreadsheetID string, cfg Config) (string, error)
	clear(ctx context.Context, spreadsheetID, rng string) error
	update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	format(ctx context.Context, spreadsheetID, sheetName string, rows int) error
}

// Result summarizes one export.
type Result struct {
	SpreadsheetID string
	Rows          int
	Skipped       bool
}

// Writer pushes the full transaction log into one tab of a spreadsheet.
type Writer struct {
	api    spreadsheetAPI
	online func() bool
	logger *slog.Logger
	loc    *time.Location
	config Config
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithOnline gates exports on a connectivity check. Offline exports are skipped.
func WithOnline(online func() bool) WriterOption {
	return func(w *Writer) { w.online = online }
}

// NewWriter creates a Google Sheets writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger, opts ...WriterOption) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(&googleAPI{service: srv, logger: logger}, config, logger, opts...), nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger, opts ...WriterOption) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		logger.Warn("unknown sheets time zone, using UTC", "time_zone", config.TimeZone)
		loc = time.UTC
	}
	w := &Writer{api: api, config: config, logger: logger, loc: loc, online: func() bool { return true }}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Export replaces the sheet contents with txns. When offline it returns a skipped
// result without error so callers can export opportunistically.
func (w *Writer) Export(ctx context.Context, txns []model.Transaction) (Result, error) {
	if !w.online() {
		w.logger.Info("offline, skipping sheets export")
		return Result{Skipped: true}, nil
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		var ensureErr error
		spreadsheetID, ensureErr = w.api.ensure(ctx, w.config.SpreadsheetID, w.config)
		return classify(ensureErr)
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	values := PrepareRows(txns, w.loc)

	err = common.WithRetry(ctx, func() error {
		if clearErr := w.api.clear(ctx, spreadsheetID, w.config.SheetName+"!A:F"); clearErr != nil {
			return classify(clearErr)
		}
		return classify(w.writeData(ctx, spreadsheetID, values))
	}, retryOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		if err := w.api.format(ctx, spreadsheetID, w.config.SheetName, len(values)); err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return Result{SpreadsheetID: spreadsheetID, Rows: len(values)}, nil
}

// writeData writes values in batches to stay under API payload limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		rng := fmt.Sprintf("%s!A%d", w.config.SheetName, i+1)
		if err := w.api.update(ctx, spreadsheetID, rng, values[i:end]); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}
		w.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}
	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token, err := storedToken(config)
		if err != nil {
			return nil, err
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func storedToken(config Config) (*oauth2.Token, error) {
	if config.RefreshToken != "" {
		return &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}, nil
	}
	token, err := LoadToken(config.TokenFile)
	if err != nil {
		return nil, common.NewUserError("No Google token found; run `budgly export auth` first", err)
	}
	return token, nil
}

// classify tells WithRetry how to treat an API error: 429 backs off to the
// maximum delay and other client errors are not retried.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == 429:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return err
	}
}

// googleAPI is the live implementation of spreadsheetAPI.
type googleAPI struct {
	service *sheets.Service
	logger  *slog.Logger
}

func (g *googleAPI) ensure(ctx context.Context, spreadsheetID string, cfg Config) (string, error) {
	if spreadsheetID != "" {
		ss, err := g.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
		}
		for _, sh := range ss.Sheets {
			if sh.Properties != nil && sh.Properties.Title == cfg.SheetName {
				return spreadsheetID, nil
			}
		}
		_, err = g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: cfg.SheetName},
			}}},
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to add sheet %q: %w", cfg.SheetName, err)
		}
		return spreadsheetID, nil
	}

	created, err := g.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    cfg.SpreadsheetName,
			TimeZone: cfg.TimeZone,
		},
		Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: cfg.SheetName}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	g.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

func (g *googleAPI) clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleAPI) update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (g *googleAPI) format(ctx context.Context, spreadsheetID, sheetName string, rows int) error {
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return err
	}
	var sheetID int64 = -1
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			sheetID = sh.Properties.SheetId
		}
	}
	if sheetID < 0 {
		return fmt.Errorf("sheet %q not found", sheetName)
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				}},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      int64(rows),
					StartColumnIndex: 2,
					EndColumnIndex:   3,
				},
				Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "#,##0.00"},
				}},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: 6},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err = g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}
