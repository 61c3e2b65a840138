package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/CPU-commits/Intranet_BCourses/repositories"
	"github.com/CPU-commits/Intranet_BCourses/res"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Roster export formats
const (
	ROSTER_XLSX = "xlsx"
	ROSTER_PDF  = "pdf"
)

const rosterSheet = "Sheet1"

var ErrRosterFormat = errors.New("Format must be xlsx or pdf")

var RosterContentTypes = map[string]string{
	ROSTER_XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ROSTER_PDF:  "application/pdf",
}

func WriteRosterXlsx(course *models.CourseWithLookup, w io.Writer) error {
	file := excelize.NewFile()

	headers := []string{"#", "Student", "ID"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(rosterSheet, cell, header); err != nil {
			return err
		}
	}
	for i, student := range course.Students {
		row := []interface{}{i + 1, student.Username, student.ID.Hex()}
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(rosterSheet, cell, value); err != nil {
				return err
			}
		}
	}
	return file.Write(w)
}

func WriteRosterPdf(course *models.CourseWithLookup, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	defer pdf.Close()

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr(course.Title))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	teacher := "-"
	if course.Teacher != nil {
		teacher = course.Teacher.Username
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Teacher: %s", teacher)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Students: %d", len(course.Students)))
	pdf.Ln(10)

	// Table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 7, "Student", "1", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "ID", "1", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for i, student := range course.Students {
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 7, tr(student.Username), "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, student.ID.Hex(), "1", 1, "L", false, 0, "")
	}

	_, height := pdf.GetPageSize()
	pdf.SetFont("Arial", "", 8)
	pdf.Text(10, height-10, time.Now().Format("2006-01-02 15:04"))

	return pdf.Output(w)
}

// Writes the populated roster of an already authorized course
func (c *CourseService) ExportStudents(
	ctx context.Context,
	course *models.Course,
	format string,
	w io.Writer,
) *res.ErrorRes {
	var write func(*models.CourseWithLookup, io.Writer) error
	switch format {
	case ROSTER_XLSX:
		write = WriteRosterXlsx
	case ROSTER_PDF:
		write = WriteRosterPdf
	default:
		return &res.ErrorRes{
			Err:        ErrRosterFormat,
			StatusCode: http.StatusBadRequest,
		}
	}

	populated, err := c.repository.GetCourse(ctx, course.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &res.ErrorRes{
				Err:        ErrCourseNotFound,
				StatusCode: http.StatusNotFound,
			}
		}
		return c.internalError("export students", course.ID.Hex(), err)
	}
	if err := write(populated, w); err != nil {
		return c.internalError("export students", course.ID.Hex(), err)
	}
	return nil
}
