package fallback

import (
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

const blueprintMarkdown = `# Migration Blueprint: {{project}}

## Executive Summary
Complete modernization of legacy {{language}} application to a secure, scalable Python/FastAPI + Next.js stack.

## Architecture
- **Pattern**: Microservices with API Gateway
- **Target Stack**: Python 3.12 + FastAPI + PostgreSQL + Next.js 14 + TypeScript

## Security Improvements
- ✅ Eliminate SQL injection with ORM
- ✅ Replace hard-coded credentials with environment variables
- ✅ PCI-compliant payment processing via Stripe
- ✅ Secure JWT-based authentication
- ✅ Comprehensive input validation

## Implementation Timeline
**Total Duration**: 4 weeks
- Phase 1: Foundation (1 week)
- Phase 2: Core Features (1 week)
- Phase 3: Payment Integration (1 week)
- Phase 4: Admin & Polish (1 week)

## Risk Mitigation
- Gradual rollout with parallel legacy system
- Comprehensive testing before production deployment
- Database migration strategy with rollback plan
`

// Blueprint returns the simulated modernization blueprint for an audit.
func Blueprint(audit *domain.AuditReport) *domain.Blueprint {
	projectName, language := "", LanguageUnknown
	if audit != nil {
		projectName = audit.ProjectName
		if audit.DetectedLanguage != "" {
			language = audit.DetectedLanguage
		}
	}

	markdown := strings.NewReplacer("{{project}}", projectName, "{{language}}", language).Replace(blueprintMarkdown)

	return &domain.Blueprint{
		ProjectName: projectName,
		TargetStack: domain.TargetStack{
			Backend:        "Python 3.12 + FastAPI",
			Frontend:       "React (Next.js 14) + TypeScript",
			Database:       "PostgreSQL 15 with Prisma ORM",
			Authentication: "JWT + OAuth2 with refresh tokens",
			Deployment:     "Docker + Kubernetes",
		},
		ArchitecturalDesign: domain.ArchitecturalDesign{
			Pattern: "Microservices with API Gateway",
			Reasoning: "The legacy system mixes multiple concerns. A microservices approach allows us to separate " +
				"authentication, payment processing, and user management into independent, scalable services. " +
				"This also enables gradual migration and better fault isolation.",
			Components: []string{
				"API Gateway (FastAPI)",
				"Authentication Service (OAuth2 + JWT)",
				"User Service (CRUD operations)",
				"Payment Service (PCI-compliant gateway integration)",
				"Admin Service (Role-based access control)",
			},
		},
		DatabaseDesign: domain.DatabaseDesign{
			Models: []domain.DataModel{
				{
					Name: "User",
					Fields: []domain.ModelField{
						{Name: "id", Type: "UUID", Constraints: "PRIMARY KEY"},
						{Name: "username", Type: "VARCHAR(100)", Constraints: "UNIQUE, NOT NULL"},
						{Name: "email", Type: "VARCHAR(255)", Constraints: "UNIQUE, NOT NULL"},
						{Name: "password_hash", Type: "VARCHAR(255)", Constraints: "NOT NULL"},
						{Name: "created_at", Type: "TIMESTAMP", Constraints: "DEFAULT NOW()"},
						{Name: "updated_at", Type: "TIMESTAMP", Constraints: "DEFAULT NOW()"},
					},
					Relationships: []string{"Has many payments", "Has many sessions"},
				},
				{
					Name: "Payment",
					Fields: []domain.ModelField{
						{Name: "id", Type: "UUID", Constraints: "PRIMARY KEY"},
						{Name: "user_id", Type: "UUID", Constraints: "FOREIGN KEY REFERENCES users(id)"},
						{Name: "amount", Type: "DECIMAL(10,2)", Constraints: "NOT NULL"},
						{Name: "payment_method", Type: "VARCHAR(50)", Constraints: "NOT NULL"},
						{Name: "stripe_payment_intent", Type: "VARCHAR(255)", Constraints: "UNIQUE"},
						{Name: "status", Type: "ENUM", Constraints: "pending|completed|failed"},
						{Name: "created_at", Type: "TIMESTAMP", Constraints: "DEFAULT NOW()"},
					},
					Relationships: []string{"Belongs to user"},
				},
				{
					Name: "Session",
					Fields: []domain.ModelField{
						{Name: "id", Type: "UUID", Constraints: "PRIMARY KEY"},
						{Name: "user_id", Type: "UUID", Constraints: "FOREIGN KEY REFERENCES users(id)"},
						{Name: "token", Type: "VARCHAR(500)", Constraints: "UNIQUE, NOT NULL"},
						{Name: "expires_at", Type: "TIMESTAMP", Constraints: "NOT NULL"},
						{Name: "created_at", Type: "TIMESTAMP", Constraints: "DEFAULT NOW()"},
					},
					Relationships: []string{"Belongs to user"},
				},
			},
			Migrations: "Use Prisma migrations for version control and rollback capability",
		},
		APIDesign: domain.APIDesign{
			Endpoints: []domain.EndpointDesign{
				{Method: "POST", Path: "/api/auth/register", Description: "User registration with email verification", Authentication: "none"},
				{Method: "POST", Path: "/api/auth/login", Description: "User login returning JWT access & refresh tokens", Authentication: "none"},
				{Method: "POST", Path: "/api/auth/refresh", Description: "Refresh access token", Authentication: "refresh_token"},
				{Method: "GET", Path: "/api/users/me", Description: "Get current user profile", Authentication: "required"},
				{Method: "PUT", Path: "/api/users/me", Description: "Update user profile", Authentication: "required"},
				{Method: "POST", Path: "/api/payments/intent", Description: "Create Stripe payment intent", Authentication: "required"},
				{Method: "POST", Path: "/api/payments/confirm", Description: "Confirm payment completion", Authentication: "required"},
				{Method: "GET", Path: "/api/payments/history", Description: "Get user payment history", Authentication: "required"},
				{Method: "GET", Path: "/api/admin/users", Description: "List all users", Authentication: "admin_required"},
				{Method: "GET", Path: "/api/admin/stats", Description: "System statistics", Authentication: "admin_required"},
			},
			Authentication: "JWT-based with role-based access control (RBAC)",
		},
		FrontendStructure: domain.FrontendStructure{
			Pages: []string{
				"/login - Authentication page",
				"/register - User registration",
				"/dashboard - User dashboard",
				"/payments - Payment management",
				"/admin - Admin panel (protected)",
			},
			Components: []string{
				"AuthForm - Reusable authentication forms",
				"PaymentCard - Payment method display",
				"UserTable - Admin user management",
				"ProtectedRoute - Route authentication wrapper",
			},
			StateManagement: "React Context API + SWR for data fetching",
		},
		FileStructure: domain.FileStructure{
			Backend: []string{
				"app/main.py - FastAPI application entry",
				"app/routers/auth.py - Authentication endpoints",
				"app/routers/users.py - User management",
				"app/routers/payments.py - Payment processing",
				"app/routers/admin.py - Admin operations",
				"app/models/ - Prisma models",
				"app/services/auth_service.py - Auth business logic",
				"app/services/payment_service.py - Payment integration",
				"app/middleware/auth.py - JWT verification",
				"app/utils/security.py - Password hashing, validation",
				"tests/ - Unit and integration tests",
			},
			Frontend: []string{
				"app/page.tsx - Landing page",
				"app/login/page.tsx - Login page",
				"app/dashboard/page.tsx - User dashboard",
				"app/payments/page.tsx - Payments page",
				"components/AuthForm.tsx",
				"components/PaymentCard.tsx",
				"lib/api.ts - API client",
				"lib/auth.ts - Auth utilities",
				"contexts/AuthContext.tsx",
			},
		},
		ImplementationPhases: []domain.ImplementationPhase{
			{
				Phase:       "Phase 1: Foundation",
				Description: "Set up project structure, database, and authentication",
				Files:       []string{"FastAPI setup", "Prisma schema", "JWT auth", "User model & routes"},
				Duration:    "1 week",
			},
			{
				Phase:       "Phase 2: Core Features",
				Description: "Implement user management and basic frontend",
				Files:       []string{"User CRUD operations", "Next.js setup", "Protected routes", "Dashboard UI"},
				Duration:    "1 week",
			},
			{
				Phase:       "Phase 3: Payment Integration",
				Description: "Integrate Stripe and implement payment flows",
				Files:       []string{"Stripe integration", "Payment endpoints", "Payment UI", "Webhooks"},
				Duration:    "1 week",
			},
			{
				Phase:       "Phase 4: Admin & Polish",
				Description: "Admin panel, testing, and security hardening",
				Files:       []string{"Admin routes", "RBAC implementation", "Security audit", "Testing suite"},
				Duration:    "1 week",
			},
		},
		DecisionLog: domain.DecisionLog{
			KeyDecisions: []string{
				"Chose FastAPI over Flask for better async support and automatic API documentation",
				"PostgreSQL over MongoDB for ACID compliance in payment transactions",
				"Microservices pattern to isolate security-critical payment processing",
				"Stripe integration instead of raw card handling for PCI compliance",
				"JWT with refresh tokens for stateless auth with improved security",
			},
			Tradeoffs: []string{
				"Microservices add complexity but provide better security isolation",
				"TypeScript adds learning curve but catches errors early",
				"Stripe has fees but eliminates PCI compliance burden",
				"Server-side rendering (Next.js) vs SPA trade-off: chose Next.js for SEO and initial load performance",
			},
			Reasoning: "The legacy code has critical security flaws that require a complete architectural rethink. " +
				"Rather than patching vulnerabilities, we're building a modern, secure-by-design system. " +
				"The microservices approach allows us to isolate the payment processing service with additional " +
				"security measures while keeping the codebase maintainable.",
		},
		SecurityConsiderations: []string{
			"All passwords hashed with bcrypt (min 12 rounds)",
			"JWT tokens with short expiration (15 min) + refresh tokens",
			"HTTPS enforced for all communications",
			"Input validation using Pydantic models",
			"SQL injection prevention via ORM",
			"CSRF protection with SameSite cookies",
			"Rate limiting on authentication endpoints",
			"Content Security Policy (CSP) headers",
			"Regular security audits and dependency updates",
		},
		TestingStrategy:   "Unit tests with pytest, integration tests for API endpoints, E2E tests with Playwright, security scanning with Bandit",
		BlueprintMarkdown: markdown,
		Mode:              domain.ModeSimulated,
	}
}
