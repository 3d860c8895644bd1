package ports

import "context"

// OddsIngestor refresca eventos y cuotas desde el proveedor de odds.
type OddsIngestor interface {
	// FetchAndStoreOdds es idempotente: upserta eventos, inserta las líneas
	// nuevas y apaga el flag is_current de las superadas.
	FetchAndStoreOdds(ctx context.Context) error
}
