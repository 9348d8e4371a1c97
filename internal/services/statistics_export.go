package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type StatisticsExportServiceInterface interface {
	// ExportPartStatistics renders the per-(part, department) aggregates
	// as an xlsx workbook for the production office.
	ExportPartStatistics(ctx context.Context) (*bytes.Buffer, error)
}

type StatisticsExportService struct {
	partStatRepo repositories.PartStatisticRepositoryInterface
	logger       *zap.Logger
}

func NewStatisticsExportService(partStatRepo repositories.PartStatisticRepositoryInterface, logger *zap.Logger) StatisticsExportServiceInterface {
	return &StatisticsExportService{partStatRepo: partStatRepo, logger: logger}
}

func (s *StatisticsExportService) ExportPartStatistics(ctx context.Context) (*bytes.Buffer, error) {
	stats, err := s.partStatRepo.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	const sheet = "Part statistics"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Part number", "Department", "Completed visits",
		"Avg advancement", "Avg working", "Avg waiting"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, st := range stats {
		values := []interface{}{
			st.PartNumber,
			st.DepartmentCode,
			st.CompletedCount,
			utils.FormatFloatMinutes(st.AvgAdvancementMinutes),
			utils.FormatFloatMinutes(st.AvgWorkingMinutes),
			utils.FormatFloatMinutes(st.AvgWaitingMinutes),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "F", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write statistics workbook: %w", err)
	}
	return buf, nil
}
