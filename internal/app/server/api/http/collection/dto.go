package collection

type upsertInput[T any] struct {
	Body T
}

type deleteInput struct {
	ID string `path:"id" doc:"Entity id"`
}

type output struct {
	Body Response
}

type Response struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
