// Package convert maps domain types to wire DTOs shared by the HTTP and gRPC transports.
package convert

import "github.com/and161185/calcapi/internal/model"

// UserDeletedMessage acknowledges a successful delete.
const UserDeletedMessage = "User successfully deleted"

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ResultResponse carries a calculation result.
type ResultResponse struct {
	Result float64 `json:"result"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToUserResponse converts a domain user.
func ToUserResponse(u model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name}
}

// ToResultResponse wraps a calculation result.
func ToResultResponse(v float64) ResultResponse { return ResultResponse{Result: v} }

// UserDeleted returns the delete acknowledgment.
func UserDeleted() MessageResponse { return MessageResponse{Message: UserDeletedMessage} }
