package handler

import (
	"context"
	"io"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/service"
	"github.com/spiritus-lectoris/catalog-service/catalog/internal/service/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	ListBooks(ctx context.Context, search string) ([]model.Book, error)
	Stats(ctx context.Context) (model.Stats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) (bool, error)
}

var _ CatalogService = (*service.Service)(nil)
var _ AuthService = (*auth.Service)(nil)
