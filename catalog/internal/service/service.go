package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/repository"
)

type Service struct {
	log  *zap.Logger
	repo repository.BookRepository
}

func NewService(repo repository.BookRepository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	return s.repo.Create(ctx, req)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context, search string) ([]model.Book, error) {
	return s.repo.List(ctx, search)
}

// Stats recomputes from the full listing on every call.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	books, err := s.repo.List(ctx, "")
	if err != nil {
		return model.Stats{}, err
	}
	return ComputeStats(books, time.Now()), nil
}

// ExportCSV streams the full listing as a csv document.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	books, err := s.repo.List(ctx, "")
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "author", "isbn", "createdAt", "updatedAt"}); err != nil {
		return err
	}
	for _, b := range books {
		rec := []string{
			strconv.Itoa(b.ID),
			b.Name,
			b.Author,
			b.ISBN,
			b.CreatedAt.Format(time.RFC3339),
			b.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
