package opshub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client wraps the Google Sheets API for Ops Hub reads and writes.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewClient builds a Sheets client from a service-account credentials file.
func NewClient(ctx context.Context, credentialsPath, spreadsheetID string, logger *slog.Logger) (*Client, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// sheetTitleByGID resolves a worksheet's title from its numeric gid.
func (c *Client) sheetTitleByGID(ctx context.Context, gid int64) (string, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.SheetId == gid {
			return sh.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("no worksheet found with gid=%d", gid)
}

// FetchRows reads the worksheet identified by gid with grid data and maps
// each data row into a Row, classifying the three leader cells from their
// effective background color and strikethrough flag.
func (c *Client) FetchRows(ctx context.Context, gid int64) ([]Row, error) {
	title, err := c.sheetTitleByGID(ctx, gid)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Ranges(title).
		IncludeGridData(true).
		Fields("sheets.data.rowData.values(formattedValue,effectiveFormat.backgroundColor,effectiveFormat.textFormat.strikethrough)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grid data for %q: %w", title, err)
	}
	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		return nil, nil
	}

	rowData := resp.Sheets[0].Data[0].RowData
	if len(rowData) < 2 {
		return nil, nil
	}

	header := make([]string, len(rowData[0].Values))
	for i, cell := range rowData[0].Values {
		header[i] = strings.TrimSpace(cell.FormattedValue)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		if h != "" {
			colIdx[h] = i
		}
	}

	value := func(cells []*sheets.CellData, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i].FormattedValue)
	}
	leaderCell := func(cells []*sheets.CellData, col string) LeaderCell {
		i, ok := colIdx[col]
		if !ok || i >= len(cells) {
			return LeaderCell{Class: ClassNormal}
		}
		return LeaderCell{
			Name:  strings.TrimSpace(cells[i].FormattedValue),
			Class: Classify(cellFormat(cells[i])),
		}
	}

	rows := make([]Row, 0, len(rowData)-1)
	for _, rd := range rowData[1:] {
		cells := rd.Values
		rows = append(rows, Row{
			Region:    value(cells, ColRegion),
			Site:      value(cells, ColSite),
			Lesson:    value(cells, ColLesson),
			Day:       value(cells, ColDay),
			StartTime: value(cells, ColStartTime),
			EndTime:   value(cells, ColEndTime),
			Setup:     value(cells, ColSetup),
			StartDate: value(cells, ColStartDate),
			EndDate:   value(cells, ColEndDate),
			District:  value(cells, ColDistrict),
			Leaders: [3]LeaderCell{
				leaderCell(cells, ColLeader1),
				leaderCell(cells, ColLeader2),
				leaderCell(cells, ColLeader3),
			},
		})
	}

	c.logger.Info("fetched ops hub rows", slog.String("sheet", title), slog.Int("rows", len(rows)))
	return rows, nil
}

func cellFormat(cell *sheets.CellData) CellFormat {
	var f CellFormat
	if cell.EffectiveFormat == nil {
		return f
	}
	if tf := cell.EffectiveFormat.TextFormat; tf != nil && tf.Strikethrough {
		f.Strikethrough = true
	}
	if bg := cell.EffectiveFormat.BackgroundColor; bg != nil {
		f.HasBackground = true
		f.Background = RGB{R: bg.Red, G: bg.Green, B: bg.Blue}
	}
	return f
}

// RawValues reads the worksheet's cell values without formatting, for
// lookups like leader workshop assignments.
func (c *Client) RawValues(ctx context.Context, gid int64) ([][]string, error) {
	title, err := c.sheetTitleByGID(ctx, gid)
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch values for %q: %w", title, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// UpdateCellColor sets one cell's background color on the worksheet.
// row and col are zero-based grid coordinates.
func (c *Client) UpdateCellColor(ctx context.Context, gid int64, row, col int64, color RGB) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          gid,
					StartRowIndex:    row,
					EndRowIndex:      row + 1,
					StartColumnIndex: col,
					EndColumnIndex:   col + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{Red: color.R, Green: color.G, Blue: color.B},
					},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update cell color at (%d,%d): %w", row, col, err)
	}
	return nil
}
