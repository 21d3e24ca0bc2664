package peer

type pingOutput struct {
	Body PingResponse
}

type PingResponse struct {
	App string `json:"app" example:"tidemark" doc:"Application identity"`
}

type applyInput[T any] struct {
	Body T
}

type applyOutput struct {
	Body ApplyResponse
}

type ApplyResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Applied bool   `json:"applied" doc:"False when the local copy was newer"`
}
