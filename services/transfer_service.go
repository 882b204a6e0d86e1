package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ff-tournament-system/models"
	"ff-tournament-system/spreadsheet"
	"ff-tournament-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Spreadsheet column names.
var (
	PlayerColumns    = []string{"playerName", "ffName", "ffId", "map1", "map2", "map3", "total"}
	ConductorColumns = []string{"name", "phone", "rollNo", "role"}
)

// PublishFunc stores an object and returns its public URL.
type PublishFunc func(ctx context.Context, key, contentType string, data []byte) (string, error)

// TransferService moves players and conductors in and out of spreadsheets.
type TransferService struct {
	DB         *gorm.DB
	Conductors *ConductorService
	Sheets     *spreadsheet.SheetsSource
	Publish    PublishFunc
}

func NewTransferService(db *gorm.DB, conductors *ConductorService, sheets *spreadsheet.SheetsSource) *TransferService {
	return &TransferService{DB: db, Conductors: conductors, Sheets: sheets, Publish: utils.UploadBytesToR2}
}

// RowError points at a spreadsheet row that was not imported.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported  int        `json:"imported"`
	Duplicate int        `json:"duplicate"`
	Invalid   []RowError `json:"invalid"`
}

// ImportPlayers inserts every valid row. Rows whose ffId is already registered
// (including earlier rows of the same sheet) are counted as duplicates, so
// re-running an import is harmless.
func (s *TransferService) ImportPlayers(ctx context.Context, rows []spreadsheet.Row) (*ImportResult, error) {
	if err := spreadsheet.Require(rows, "playerName", "ffName", "ffId"); err != nil {
		return nil, NewValidationError("INVALID_SHEET", err.Error())
	}

	result := &ImportResult{Invalid: []RowError{}}
	db := s.DB.WithContext(ctx)
	for _, row := range rows {
		in := RegisterPlayerInput{
			PlayerName: row.Get("playerName"),
			FFName:     row.Get("ffName"),
			FFID:       row.Get("ffId"),
		}
		in.normalize()
		if err := in.validate(); err != nil {
			result.Invalid = append(result.Invalid, RowError{Row: row.Number, Error: messageOf(err)})
			continue
		}

		player := &models.Player{
			ID:         uuid.NewString(),
			PlayerName: in.PlayerName,
			FFName:     in.FFName,
			FFID:       in.FFID,
			Timestamp:  time.Now().UTC(),
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ff_id"}},
			DoNothing: true,
		}).Create(player)
		if res.Error != nil {
			return result, storageError(res.Error, "", "", "", "")
		}
		if res.RowsAffected == 0 {
			result.Duplicate++
			continue
		}
		result.Imported++
	}

	log.Printf("[IMPORT] players: %d imported, %d duplicate, %d invalid",
		result.Imported, result.Duplicate, len(result.Invalid))
	return result, nil
}

// ImportConductors creates a conductor per valid row.
func (s *TransferService) ImportConductors(ctx context.Context, rows []spreadsheet.Row) (*ImportResult, error) {
	if err := spreadsheet.Require(rows, "name", "phone", "role"); err != nil {
		return nil, NewValidationError("INVALID_SHEET", err.Error())
	}

	result := &ImportResult{Invalid: []RowError{}}
	for _, row := range rows {
		_, err := s.Conductors.Create(ctx, ConductorInput{
			Name:   row.Get("name"),
			Phone:  row.Get("phone"),
			RollNo: row.Get("rollNo"),
			Role:   row.Get("role"),
		})
		switch {
		case err == nil:
			result.Imported++
		case IsConflict(err):
			result.Duplicate++
		case IsValidation(err):
			result.Invalid = append(result.Invalid, RowError{Row: row.Number, Error: messageOf(err)})
		default:
			return result, err
		}
	}

	log.Printf("[IMPORT] conductors: %d imported, %d invalid", result.Imported, len(result.Invalid))
	return result, nil
}

// ImportPlayersFile and ImportConductorsFile read a staged workbook.
func (s *TransferService) ImportPlayersFile(ctx context.Context, path string) (*ImportResult, error) {
	rows, err := spreadsheet.ReadXLSXFile(path)
	if err != nil {
		return nil, NewValidationError("INVALID_SHEET", err.Error())
	}
	return s.ImportPlayers(ctx, rows)
}

func (s *TransferService) ImportConductorsFile(ctx context.Context, path string) (*ImportResult, error) {
	rows, err := spreadsheet.ReadXLSXFile(path)
	if err != nil {
		return nil, NewValidationError("INVALID_SHEET", err.Error())
	}
	return s.ImportConductors(ctx, rows)
}

// SheetRows reads rows from Google Sheets.
func (s *TransferService) SheetRows(ctx context.Context, spreadsheetID, readRange string) ([]spreadsheet.Row, error) {
	if s.Sheets == nil {
		return nil, NewValidationError("SHEETS_DISABLED", "google sheets import is not configured")
	}
	if spreadsheetID == "" {
		return nil, NewValidationError("MISSING_SPREADSHEET_ID", "spreadsheetId is required")
	}
	rows, err := s.Sheets.Rows(ctx, spreadsheetID, readRange)
	if err != nil {
		return nil, NewServerError("SHEETS_READ_FAILED", "could not read the spreadsheet", err)
	}
	return rows, nil
}

func (s *TransferService) ExportPlayers(ctx context.Context) ([]byte, error) {
	var players []models.Player
	if err := s.DB.WithContext(ctx).Order("timestamp ASC").Find(&players).Error; err != nil {
		return nil, storageError(err, "", "", "", "")
	}
	rows := make([][]any, 0, len(players))
	for _, p := range players {
		rows = append(rows, []any{p.PlayerName, p.FFName, p.FFID, p.Map1, p.Map2, p.Map3, p.Total})
	}
	data, err := spreadsheet.WriteXLSX("Players", PlayerColumns, rows)
	if err != nil {
		return nil, NewServerError("EXPORT_FAILED", "could not build the workbook", err)
	}
	log.Printf("[EXPORT] players: %d rows", len(rows))
	return data, nil
}

func (s *TransferService) ExportConductors(ctx context.Context) ([]byte, error) {
	conductors, err := s.Conductors.List(ctx, "")
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(conductors))
	for _, c := range conductors {
		rows = append(rows, []any{c.Name, c.Phone, c.RollNo, c.Role})
	}
	data, err := spreadsheet.WriteXLSX("Conductors", ConductorColumns, rows)
	if err != nil {
		return nil, NewServerError("EXPORT_FAILED", "could not build the workbook", err)
	}
	log.Printf("[EXPORT] conductors: %d rows", len(rows))
	return data, nil
}

// PublishExport uploads an export workbook and returns its URL.
func (s *TransferService) PublishExport(ctx context.Context, name string, data []byte) (string, error) {
	if s.Publish == nil {
		return "", NewValidationError("STORAGE_DISABLED", "object storage is not configured")
	}
	key := utils.ObjectKey("exports", name, "xlsx", time.Now())
	url, err := s.Publish(ctx, key, spreadsheet.ContentTypeXLSX, data)
	if err != nil {
		if errors.Is(err, utils.ErrR2Disabled) {
			return "", NewValidationError("STORAGE_DISABLED", "object storage is not configured")
		}
		return "", NewServerError("PUBLISH_FAILED", "could not upload the export", err)
	}
	log.Printf("[EXPORT] published %s", key)
	return url, nil
}

func messageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
	}
	return err.Error()
}
