// Seeds the local database with providers, customers and open service
// requests so the API has something to serve during development.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"helpr/database"
	"helpr/models"

	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	// Initialize the database connection.
	database.InitDB()
	client := database.MongoClient
	db := client.Database("helpr")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Clear existing data.
	for _, name := range []string{"providers", "users", "services", "service_fill_requests"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", name, err)
		}
	}

	// Fixed customer point for simulation (Nairobi CBD).
	anchorLon, anchorLat := 36.8219, -1.2921

	serviceTypes := []string{"Moving", "Cleaning", "Plumbing", "Electrical", "Gardening"}
	providersPerService := 6

	rand.Seed(time.Now().UnixNano())
	now := time.Now()

	var providers []interface{}
	providerCounter := 1
	for _, service := range serviceTypes {
		for i := 1; i <= providersPerService; i++ {
			providers = append(providers, models.Provider{
				ID:            fmt.Sprintf("provider-%03d", providerCounter),
				Name:          fmt.Sprintf("%s Pro %d", service, i),
				Email:         fmt.Sprintf("%s_pro_%d@example.com", service, i),
				PhoneNumber:   fmt.Sprintf("+2547%08d", providerCounter),
				ServiceTypes:  []string{service},
				Rating:        3.5 + rand.Float64()*1.5,
				CompletedJobs: rand.Intn(120),
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			providerCounter++
		}
	}
	if _, err := db.Collection("providers").InsertMany(ctx, providers); err != nil {
		log.Fatalf("Failed to seed providers: %v", err)
	}

	// Customers.
	var users []interface{}
	for i := 1; i <= 10; i++ {
		users = append(users, models.User{
			ID:          fmt.Sprintf("user-%03d", i),
			Name:        fmt.Sprintf("Customer %d", i),
			Email:       fmt.Sprintf("customer_%d@example.com", i),
			PhoneNumber: fmt.Sprintf("+2547%08d", 90000000+i),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if _, err := db.Collection("users").InsertMany(ctx, users); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	// Open service requests: mostly ASAP, a few scheduled for tomorrow.
	var services []interface{}
	for i := 1; i <= 12; i++ {
		serviceType := serviceTypes[rand.Intn(len(serviceTypes))]
		svc := models.ServiceRequest{
			ID:             fmt.Sprintf("service-%03d", i),
			CustomerID:     fmt.Sprintf("user-%03d", 1+rand.Intn(10)),
			ServiceType:    serviceType,
			Status:         models.StatusFindingPros,
			Price:          float64(20 + rand.Intn(180)),
			Description:    fmt.Sprintf("Seeded %s job %d", serviceType, i),
			SchedulingType: models.SchedulingASAP,
			StartLocation: models.Location{
				Address: fmt.Sprintf("%d Moi Avenue, Nairobi", i),
				Geo:     models.NewGeoPoint(anchorLon+rand.Float64()*0.02, anchorLat+rand.Float64()*0.02),
			},
			CreatedAt: now.Add(-time.Duration(rand.Intn(120)) * time.Minute),
			UpdatedAt: now,
		}
		if i%4 == 0 {
			at := now.Add(24 * time.Hour).Add(time.Duration(rand.Intn(8)) * time.Hour)
			svc.SchedulingType = models.SchedulingScheduled
			svc.ScheduledAt = &at
		}
		services = append(services, svc)
	}
	if _, err := db.Collection("services").InsertMany(ctx, services); err != nil {
		log.Fatalf("Failed to seed service requests: %v", err)
	}

	// A few outstanding offers so accept flows have something to chew on.
	var fills []interface{}
	fillCounter := 1
	for i := 1; i <= 6; i++ {
		serviceID := fmt.Sprintf("service-%03d", i)
		for j := 0; j < 1+rand.Intn(3); j++ {
			fills = append(fills, models.ServiceFillRequest{
				ID:         fmt.Sprintf("fill-%03d", fillCounter),
				ServiceID:  serviceID,
				ProviderID: fmt.Sprintf("provider-%03d", 1+rand.Intn(providerCounter-1)),
				BidAmount:  float64(20 + rand.Intn(200)),
				CreatedAt:  now,
			})
			fillCounter++
		}
	}
	if _, err := db.Collection("service_fill_requests").InsertMany(ctx, fills); err != nil {
		log.Fatalf("Failed to seed fill requests: %v", err)
	}

	fmt.Printf("Seeded %d providers, %d users, %d service requests, %d offers\n",
		len(providers), len(users), len(services), len(fills))
}
