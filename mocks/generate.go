package mocks

//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/rxtech-lab/argo-consolidator/internal/history Source
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-consolidator/internal/indicator Indicator
//go:generate mockgen -destination=./mock_catalog.go -package=mocks github.com/rxtech-lab/argo-consolidator/internal/indicator Catalog
