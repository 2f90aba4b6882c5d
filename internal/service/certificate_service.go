package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/repository"
	"onboardflow_backend/internal/util"

	"github.com/jung-kurt/gofpdf"
)

// CertificateService 流程结业证书：生成 PDF 并写入存储
type CertificateService struct {
	Repo        *repository.CertificateRepository
	Users       *repository.UserRepository
	Enrollments *repository.EnrollmentRepository
	Flows       *repository.FlowRepository
	Storage     *StorageService
}

func NewCertificateService(
	repo *repository.CertificateRepository,
	users *repository.UserRepository,
	enrollments *repository.EnrollmentRepository,
	flows *repository.FlowRepository,
	storage *StorageService,
) *CertificateService {
	return &CertificateService{
		Repo:        repo,
		Users:       users,
		Enrollments: enrollments,
		Flows:       flows,
		Storage:     storage,
	}
}

// IssueForEnrollment 幂等：同一报名重复触发时返回已签发的证书
func (s *CertificateService) IssueForEnrollment(userID, enrollmentID uint) (*model.Certificate, error) {
	existing, err := s.Repo.FindByEnrollment(enrollmentID)
	if err != nil && !errors.Is(err, util.ErrCertificateNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.Enrollments.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	flow, err := s.Flows.FindFlowByID(enrollment.FlowID)
	if err != nil {
		return nil, err
	}

	serial := model.GenerateUUID()
	issuedAt := time.Now()

	pdf, err := renderCertificatePDF(user.Name, flow.Title, serial, issuedAt)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s/%s.pdf", util.CertificateDirName, serial)
	path, err := s.Storage.Provider.Upload(context.Background(), filename, bytes.NewReader(pdf), int64(len(pdf)), util.CertificateContentType)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		UserID:       userID,
		EnrollmentID: enrollmentID,
		SerialNo:     serial,
		FilePath:     path,
		IssuedAt:     issuedAt,
	}
	if err := s.Repo.Create(cert); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *CertificateService) GetByEnrollment(enrollmentID uint) (*model.Certificate, error) {
	return s.Repo.FindByEnrollment(enrollmentID)
}

func renderCertificatePDF(userName, flowTitle, serial string, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 40, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 12, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 16, userName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 12, "has successfully completed", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 14, flowTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 20, "Issued on "+issuedAt.Format(util.DateFormat), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Serial: "+serial, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
