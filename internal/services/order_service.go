package services

import (
	"fmt"
	"log"
	"time"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/rabbitmq"

	"github.com/google/uuid"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartService *CartService
	mqClient    *rabbitmq.Client // RabbitMQ client
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, cartService *CartService, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartService: cartService,
		mqClient:    mqClient,
	}
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrdersByCustomer retrieves all orders of a customer.
func (s *OrderService) GetOrdersByCustomer(customerID string) ([]models.Order, error) {
	return s.orderRepo.GetByCustomer(customerID)
}

// Checkout turns the customer's durable cart into a pending order. Unit
// prices are snapshotted at order time, every line is validated against
// current stock, and the cart is emptied once the order is stored.
func (s *OrderService) Checkout(customerID string) (*models.Order, error) {
	summary, err := s.cartService.Summary(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart for checkout: %w", err)
	}
	if len(summary.Lines) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", models.ErrNotFound)
	}

	var totalAmount int64
	var processedItems []models.OrderItem
	for _, line := range summary.Lines {
		if line.Product.Stock < line.Quantity {
			return nil, fmt.Errorf("product %s (requested: %d, available: %d): %w",
				line.Product.ID, line.Quantity, line.Product.Stock, models.ErrInsufficientStock)
		}
		processedItems = append(processedItems, models.OrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice, // Price at the time of order creation
		})
		totalAmount += line.TotalPrice
	}

	newOrder := &models.Order{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		Items:       processedItems,
		TotalAmount: totalAmount,
		Status:      "pending", // Initial status
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.orderRepo.Create(newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	if err := s.cartService.Clear(customerID); err != nil {
		log.Printf("Warning: failed to clear cart after checkout of order %s: %v", newOrder.ID, err)
	}

	// Publish an event to RabbitMQ for order creation. The message contains
	// enough info for consumers to process it.
	if s.mqClient != nil {
		err := s.mqClient.PublishOrderCreated(map[string]interface{}{
			"orderID":    newOrder.ID,
			"customerID": newOrder.CustomerID,
			"status":     newOrder.Status,
			"total":      newOrder.TotalAmount,
		})
		if err != nil {
			log.Printf("Warning: Failed to publish order created event for order %s: %v", newOrder.ID, err)
		} else {
			log.Printf("Successfully published order created event for order %s", newOrder.ID)
		}
	} else {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
	}

	return newOrder, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	// Add validation for status if necessary
	validStatuses := map[string]bool{"pending": true, "processing": true, "shipped": true, "delivered": true, "cancelled": true}
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
