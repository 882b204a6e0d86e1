package handlers

import (
	"context"
	"fmt"
	"log"

	"ff-tournament-system/services"
	"ff-tournament-system/spreadsheet"
	"ff-tournament-system/utils"

	"github.com/gofiber/fiber/v2"
)

type sheetImportRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Range         string `json:"range"`
}

type (
	fileImporter  func(ctx context.Context, path string) (*services.ImportResult, error)
	rowsImporter  func(ctx context.Context, rows []spreadsheet.Row) (*services.ImportResult, error)
	sheetExporter func(ctx context.Context) ([]byte, error)
)

// SetupTransferRoutes registers spreadsheet import/export for players and
// conductors. Uploaded workbooks are staged in tmpDir and removed afterwards.
func SetupTransferRoutes(admin fiber.Router, transferService *services.TransferService, tmpDir string) {
	for _, kind := range []struct {
		name       string
		fromFile   fileImporter
		fromRows   rowsImporter
		exportRows sheetExporter
	}{
		{"players", transferService.ImportPlayersFile, transferService.ImportPlayers, transferService.ExportPlayers},
		{"conductors", transferService.ImportConductorsFile, transferService.ImportConductors, transferService.ExportConductors},
	} {
		kind := kind
		admin.Post("/"+kind.name+"/import", func(c *fiber.Ctx) error {
			fileHeader, err := c.FormFile("file")
			if err != nil {
				return respondError(c, services.NewValidationError("MISSING_FILE", "multipart field \"file\" is required"))
			}
			path, cleanup, err := utils.StageUpload(fileHeader, tmpDir)
			defer cleanup()
			if err != nil {
				return respondError(c, services.NewServerError("UPLOAD_FAILED", "could not store the upload", err))
			}
			log.Printf("[IMPORT] %s upload %q staged", kind.name, fileHeader.Filename)

			result, err := kind.fromFile(c.UserContext(), path)
			if err != nil {
				return respondError(c, err)
			}
			return c.JSON(result)
		})

		admin.Post("/"+kind.name+"/import/sheet", func(c *fiber.Ctx) error {
			var req sheetImportRequest
			if err := parseBody(c, &req); err != nil {
				return respondError(c, err)
			}
			rows, err := transferService.SheetRows(c.UserContext(), req.SpreadsheetID, req.Range)
			if err != nil {
				return respondError(c, err)
			}
			result, err := kind.fromRows(c.UserContext(), rows)
			if err != nil {
				return respondError(c, err)
			}
			return c.JSON(result)
		})

		admin.Get("/"+kind.name+"/export", func(c *fiber.Ctx) error {
			data, err := kind.exportRows(c.UserContext())
			if err != nil {
				return respondError(c, err)
			}
			if c.QueryBool("publish", false) {
				url, err := transferService.PublishExport(c.UserContext(), kind.name+" export", data)
				if err != nil {
					return respondError(c, err)
				}
				return c.JSON(fiber.Map{"url": url})
			}
			c.Set(fiber.HeaderContentType, spreadsheet.ContentTypeXLSX)
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", kind.name+".xlsx"))
			return c.Send(data)
		})
	}
}
