package sync

import "tidemark/internal/domain/entity"

type pullInput struct {
	Since string `query:"since" required:"false" doc:"Cursor returned as synced_at by the previous pull, epoch when empty"`
}

type pullOutput struct {
	Body entity.Delta
}
