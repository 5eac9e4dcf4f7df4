package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const schema = `
CREATE TABLE IF NOT EXISTS donors (
	id BIGSERIAL PRIMARY KEY,
	donor_id VARCHAR(50) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	blood_group VARCHAR(3) NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	city VARCHAR(100),
	pincode VARCHAR(20),
	last_donation_date TIMESTAMPTZ,
	completed_donations INTEGER NOT NULL DEFAULT 0,
	rejected_bookings INTEGER NOT NULL DEFAULT 0,
	available BOOLEAN NOT NULL DEFAULT false,
	batch_id VARCHAR(64),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_active BOOLEAN NOT NULL DEFAULT true
);

CREATE INDEX IF NOT EXISTS idx_donors_blood_group ON donors (blood_group) WHERE is_active = true;
CREATE INDEX IF NOT EXISTS idx_donors_batch_id ON donors (batch_id);

CREATE TABLE IF NOT EXISTS blood_requests (
	id BIGSERIAL PRIMARY KEY,
	requester_name VARCHAR(255) NOT NULL,
	contact_email VARCHAR(255) NOT NULL,
	blood_group VARCHAR(3) NOT NULL,
	units_needed INTEGER NOT NULL DEFAULT 1,
	urgency VARCHAR(10) NOT NULL DEFAULT 'normal',
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	city VARCHAR(100),
	pincode VARCHAR(20),
	status VARCHAR(10) NOT NULL DEFAULT 'open',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	notified_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_blood_requests_status ON blood_requests (status);
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Get database URL
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// First connect to default 'postgres' database to create our database
	postgresURL := strings.Replace(databaseURL, "/donor_matching", "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	// Check if database exists
	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = 'donor_matching')").Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("📦 Creating 'donor_matching' database...")
		_, err = adminConn.Exec(ctx, "CREATE DATABASE donor_matching")
		if err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Println("✅ Database 'donor_matching' created!")
	} else {
		fmt.Println("✅ Database 'donor_matching' already exists")
	}
	adminConn.Close(ctx)

	// Now connect to the donor_matching database
	fmt.Println("📡 Connecting to donor_matching database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("✅ Connected to database successfully!")
	fmt.Println()

	// Execute schema
	fmt.Println("🚀 Executing database schema...")
	_, err = conn.Exec(ctx, schema)
	if err != nil {
		fmt.Printf("❌ Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Database schema executed successfully!")
	fmt.Println()

	// Verify by counting donors
	fmt.Println("🔍 Verifying database setup...")

	var donorCount int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM donors").Scan(&donorCount)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count donors: %v\n", err)
	} else {
		fmt.Printf("   🩸 Donors in database: %d\n", donorCount)
	}

	var requestCount int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM blood_requests").Scan(&requestCount)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count requests: %v\n", err)
	} else {
		fmt.Printf("   📋 Blood requests in database: %d\n", requestCount)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Upload a donor CSV via the server or S3 bucket")
	fmt.Println("  2. Run the server: go run cmd/server/main.go")
}
