package service

import (
	"sort"
	"time"

	"github.com/spiritus-lectoris/catalog-service/catalog/internal/model"
)

const (
	topAuthors  = 5
	recentLimit = 5
)

// ComputeStats aggregates a newest-first listing. Author and isbn
// uniqueness is exact (case-sensitive). todayBooks counts creations on
// the current calendar day in now's location. frequentAuthors keeps
// first-encountered order for equal counts.
func ComputeStats(books []model.Book, now time.Time) model.Stats {
	authorCounts := make(map[string]int)
	authorOrder := make([]string, 0)
	isbns := make(map[string]struct{})

	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	todayBooks := 0
	for _, b := range books {
		if _, ok := authorCounts[b.Author]; !ok {
			authorOrder = append(authorOrder, b.Author)
		}
		authorCounts[b.Author]++
		isbns[b.ISBN] = struct{}{}
		if !b.CreatedAt.Before(startOfDay) {
			todayBooks++
		}
	}

	frequent := make([]model.AuthorCount, 0, len(authorOrder))
	for _, author := range authorOrder {
		frequent = append(frequent, model.AuthorCount{Author: author, Count: authorCounts[author]})
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return frequent[i].Count > frequent[j].Count
	})
	if len(frequent) > topAuthors {
		frequent = frequent[:topAuthors]
	}

	recent := books
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	if recent == nil {
		recent = make([]model.Book, 0)
	}

	return model.Stats{
		TotalBooks:      len(books),
		UniqueAuthors:   len(authorCounts),
		TodayBooks:      todayBooks,
		UniqueISBNs:     len(isbns),
		FrequentAuthors: frequent,
		RecentBooks:     recent,
	}
}
