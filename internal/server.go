package internal

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/auth"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/config"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/handlers"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	DB         *sql.DB
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Cfg        *config.Config
}

// NewServer wires the router on top of an already-open, migrated database.
// Opening and pinging the database is the caller's job so tests can hand in
// an in-memory store.
func NewServer(db *sql.DB, cfg *config.Config) *Server {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatal("JWT configuration validation failed:", err)
	}

	s := &Server{
		DB:         db,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    NewMetrics(),
		Cfg:        cfg,
	}

	// chi requires all middlewares before the first route
	metricsEnabled := os.Getenv("ENABLE_METRICS") == "true"
	if metricsEnabled {
		s.Router.Use(s.Metrics.Middleware())
	}

	// Mount public routes FIRST (no further middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: unreachable", http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)

	// Public lookup surface: anyone scanning a printed QR label lands here.
	s.Router.Get("/asset/{code}", s.lookupAsset)
	s.Router.Get("/assets/qrcode/{id}", s.assetQRCode)
	s.Router.Get("/assets/department_qr/{building}/{department}", s.departmentQRCode)
	s.Router.Get("/assets/department_items/{building}/{department}", s.departmentItems)

	if metricsEnabled {
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.JWTManager))
		s.mountProtectedRoutes(r)
	})

	return s
}

// Close shuts down the server and releases the database handle.
func (s *Server) Close(ctx context.Context) error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountProtectedRoutes mounts all routes that require authentication.
func (s *Server) mountProtectedRoutes(r chi.Router) {
	write := auth.Require(auth.ActionAssetWrite)
	directory := auth.Require(auth.ActionDirectoryWrite)
	accounts := auth.Require(auth.ActionAuthManage)

	// Assets
	r.Get("/dashboard", s.dashboardAssets)
	r.Get("/assets", s.listAssets)
	r.Get("/assets/qrdata/{id}", s.assetQRData)
	r.Post("/assets/add", write(http.HandlerFunc(s.createAsset)).(http.HandlerFunc))
	r.Post("/assets/update/{id}", write(http.HandlerFunc(s.updateAsset)).(http.HandlerFunc))
	r.Post("/assets/delete/{id}", write(http.HandlerFunc(s.deleteAsset)).(http.HandlerFunc))
	r.Post("/assets/bulk_delete", write(http.HandlerFunc(s.bulkDeleteAssets)).(http.HandlerFunc))
	r.Post("/assets/update_status/{id}", write(http.HandlerFunc(s.updateAssetStatus)).(http.HandlerFunc))
	r.Post("/assets/bulk_update_status", write(http.HandlerFunc(s.bulkUpdateStatus)).(http.HandlerFunc))

	// Archive
	r.Get("/archive", s.listArchivedAssets)
	r.Post("/archive/restore/{id}", write(http.HandlerFunc(s.restoreAsset)).(http.HandlerFunc))
	r.Post("/archive/bulk_restore", write(http.HandlerFunc(s.bulkRestoreAssets)).(http.HandlerFunc))
	r.Post("/archive/delete/{id}", write(http.HandlerFunc(s.purgeArchivedAsset)).(http.HandlerFunc))
	r.Post("/archive/bulk_delete", write(http.HandlerFunc(s.bulkPurgeArchivedAssets)).(http.HandlerFunc))

	// Excel import
	importsHandler := handlers.NewImportsHandler(s.DB)
	r.Post("/assets/import/excel", write(http.HandlerFunc(importsHandler.UploadExcel)).(http.HandlerFunc))

	// Directory reference tables - admin only
	r.Get("/buildings", s.listBuildings)
	r.Post("/buildings/add", directory(http.HandlerFunc(s.createBuilding)).(http.HandlerFunc))
	r.Post("/buildings/update/{id}", directory(http.HandlerFunc(s.renameBuilding)).(http.HandlerFunc))
	r.Post("/buildings/delete/{id}", directory(http.HandlerFunc(s.deleteBuilding)).(http.HandlerFunc))

	r.Get("/departments", s.listDepartments)
	r.Post("/departments/add", directory(http.HandlerFunc(s.createDepartment)).(http.HandlerFunc))
	r.Post("/departments/update/{id}", directory(http.HandlerFunc(s.renameDepartment)).(http.HandlerFunc))
	r.Post("/departments/delete/{id}", directory(http.HandlerFunc(s.deleteDepartment)).(http.HandlerFunc))

	r.Get("/users", s.listDirectoryUsers)
	r.Post("/users/add", directory(http.HandlerFunc(s.createDirectoryUser)).(http.HandlerFunc))
	r.Post("/users/bulk_add", directory(http.HandlerFunc(s.bulkCreateDirectoryUsers)).(http.HandlerFunc))
	r.Post("/users/update/{id}", directory(http.HandlerFunc(s.renameDirectoryUser)).(http.HandlerFunc))
	r.Post("/users/delete/{id}", directory(http.HandlerFunc(s.deleteDirectoryUser)).(http.HandlerFunc))

	r.Get("/asset_types", s.listAssetTypes)
	r.Post("/asset_types/add", directory(http.HandlerFunc(s.createAssetType)).(http.HandlerFunc))
	r.Post("/asset_types/update/{id}", directory(http.HandlerFunc(s.renameAssetType)).(http.HandlerFunc))
	r.Post("/asset_types/delete/{id}", directory(http.HandlerFunc(s.deleteAssetType)).(http.HandlerFunc))

	r.Get("/asset_names", s.listAssetNames)
	r.Post("/asset_names/add", directory(http.HandlerFunc(s.createAssetName)).(http.HandlerFunc))
	r.Post("/asset_names/update/{id}", directory(http.HandlerFunc(s.renameAssetName)).(http.HandlerFunc))
	r.Post("/asset_names/delete/{id}", directory(http.HandlerFunc(s.deleteAssetName)).(http.HandlerFunc))

	// Login account management - admin only
	r.Get("/auth/users", accounts(http.HandlerFunc(s.listAuthUsers)).(http.HandlerFunc))
	r.Post("/auth/users", accounts(http.HandlerFunc(s.createAuthUser)).(http.HandlerFunc))
	r.Post("/auth/users/delete/{id}", accounts(http.HandlerFunc(s.deleteAuthUser)).(http.HandlerFunc))

	// Token invalidation is client-side; the endpoint exists so clients have
	// a uniform logout call.
	r.Get("/auth/logout", s.logoutUser)
}
