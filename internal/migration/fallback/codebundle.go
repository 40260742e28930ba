package fallback

import (
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

const mainPy = `from fastapi import FastAPI
from fastapi.middleware.cors import CORSMiddleware
from app.routers import auth, users, payments, admin
from app.database import engine
from app.models import Base

# Create database tables
Base.metadata.create_all(bind=engine)

app = FastAPI(
    title="{{project}} API",
    description="Modern, secure API built with FastAPI",
    version="1.0.0"
)

app.add_middleware(
    CORSMiddleware,
    allow_origins=["http://localhost:3000"],
    allow_credentials=True,
    allow_methods=["*"],
    allow_headers=["*"],
)

app.include_router(auth.router, prefix="/api/auth", tags=["auth"])
app.include_router(users.router, prefix="/api/users", tags=["users"])
app.include_router(payments.router, prefix="/api/payments", tags=["payments"])
app.include_router(admin.router, prefix="/api/admin", tags=["admin"])

@app.get("/")
async def root():
    return {
        "message": "Welcome to {{project}} API",
        "version": "1.0.0",
        "status": "operational"
    }

@app.get("/health")
async def health_check():
    return {"status": "healthy"}
`

const authRouterPy = `from fastapi import APIRouter, Depends, HTTPException, status
from fastapi.security import OAuth2PasswordBearer, OAuth2PasswordRequestForm
from sqlalchemy.orm import Session
from app.database import get_db
from app.models import User
from app.schemas import UserCreate, Token
from app.utils.security import verify_password, get_password_hash, create_access_token
from datetime import timedelta

router = APIRouter()
oauth2_scheme = OAuth2PasswordBearer(tokenUrl="token")

@router.post("/register", status_code=status.HTTP_201_CREATED)
async def register(user: UserCreate, db: Session = Depends(get_db)):
    db_user = db.query(User).filter(User.email == user.email).first()
    if db_user:
        raise HTTPException(status_code=400, detail="Email already registered")

    hashed_password = get_password_hash(user.password)
    db_user = User(
        username=user.username,
        email=user.email,
        password_hash=hashed_password
    )
    db.add(db_user)
    db.commit()
    db.refresh(db_user)

    return {"message": "User created successfully", "user_id": db_user.id}

@router.post("/token", response_model=Token)
async def login(form_data: OAuth2PasswordRequestForm = Depends(), db: Session = Depends(get_db)):
    user = db.query(User).filter(User.username == form_data.username).first()
    if not user or not verify_password(form_data.password, user.password_hash):
        raise HTTPException(
            status_code=status.HTTP_401_UNAUTHORIZED,
            detail="Incorrect username or password",
            headers={"WWW-Authenticate": "Bearer"},
        )

    access_token_expires = timedelta(minutes=30)
    access_token = create_access_token(
        data={"sub": user.username}, expires_delta=access_token_expires
    )

    return {"access_token": access_token, "token_type": "bearer"}
`

const loginPageTsx = `'use client'

import { useState } from 'react'
import { useRouter } from 'next/navigation'
import { Button } from '@/components/ui/button'
import { Input } from '@/components/ui/input'
import { Card, CardContent, CardDescription, CardHeader, CardTitle } from '@/components/ui/card'

export default function LoginPage() {
  const router = useRouter()
  const [username, setUsername] = useState('')
  const [password, setPassword] = useState('')
  const [error, setError] = useState('')
  const [loading, setLoading] = useState(false)

  const handleLogin = async (e: React.FormEvent) => {
    e.preventDefault()
    setLoading(true)
    setError('')

    try {
      const response = await fetch('/api/auth/token', {
        method: 'POST',
        headers: { 'Content-Type': 'application/x-www-form-urlencoded' },
        body: new URLSearchParams({ username, password })
      })

      if (!response.ok) {
        throw new Error('Login failed')
      }

      const data = await response.json()
      localStorage.setItem('access_token', data.access_token)
      router.push('/dashboard')
    } catch (err) {
      setError('Invalid credentials')
    } finally {
      setLoading(false)
    }
  }

  return (
    <div className="min-h-screen flex items-center justify-center bg-gradient-to-br from-slate-900 to-slate-800">
      <Card className="w-[400px]">
        <CardHeader>
          <CardTitle>Login</CardTitle>
          <CardDescription>Enter your credentials to access your account</CardDescription>
        </CardHeader>
        <CardContent>
          <form onSubmit={handleLogin} className="space-y-4">
            <Input type="text" placeholder="Username" value={username}
              onChange={(e) => setUsername(e.target.value)} required />
            <Input type="password" placeholder="Password" value={password}
              onChange={(e) => setPassword(e.target.value)} required />
            {error && <p className="text-red-500 text-sm">{error}</p>}
            <Button type="submit" className="w-full" disabled={loading}>
              {loading ? 'Logging in...' : 'Login'}
            </Button>
          </form>
        </CardContent>
      </Card>
    </div>
  )
}
`

const authTestPy = `import pytest
from fastapi.testclient import TestClient
from app.main import app

client = TestClient(app)

def test_register_user():
    response = client.post("/api/auth/register", json={
        "username": "testuser",
        "email": "test@example.com",
        "password": "SecurePass123!"
    })
    assert response.status_code == 201
    assert "user_id" in response.json()

def test_login():
    response = client.post("/api/auth/token", data={
        "username": "testuser",
        "password": "SecurePass123!"
    })
    assert response.status_code == 200
    assert "access_token" in response.json()

def test_login_invalid_credentials():
    response = client.post("/api/auth/token", data={
        "username": "testuser",
        "password": "wrongpassword"
    })
    assert response.status_code == 401
`

const setupInstructions = `
1. Install dependencies: pip install -r requirements.txt
2. Set up environment variables in .env file
3. Run database migrations: alembic upgrade head
4. Start the server: uvicorn app.main:app --reload
5. Access API docs: http://localhost:8000/docs
`

// CodeBundle returns the simulated phase output for bp. The bundle always
// carries at least one file so the build loop has something to execute.
func CodeBundle(bp *domain.Blueprint, phase int) *domain.CodeBundle {
	projectName := ""
	if bp != nil {
		projectName = bp.ProjectName
	}

	return &domain.CodeBundle{
		Phase: phase,
		Files: []domain.GeneratedFile{
			{
				Path:        "backend/app/main.py",
				Content:     strings.ReplaceAll(mainPy, "{{project}}", projectName),
				Description: "FastAPI application entry point with router configuration",
			},
			{
				Path:        "backend/app/routers/auth.py",
				Content:     authRouterPy,
				Description: "Secure authentication endpoints with JWT",
			},
			{
				Path:        "frontend/app/login/page.tsx",
				Content:     loginPageTsx,
				Description: "Secure login page with form validation",
			},
		},
		Tests: []domain.GeneratedFile{
			{
				Path:        "backend/tests/test_auth.py",
				Content:     authTestPy,
				Description: "Authentication endpoint tests",
			},
		},
		Dependencies: []string{
			"fastapi==0.104.1",
			"uvicorn==0.24.0",
			"sqlalchemy==2.0.23",
			"psycopg2-binary==2.9.9",
			"python-jose[cryptography]==3.3.0",
			"passlib[bcrypt]==1.7.4",
			"python-multipart==0.0.6",
			"stripe==7.4.0",
			"pydantic==2.5.0",
			"pytest==7.4.3",
		},
		SetupInstructions: setupInstructions,
		NextSteps:         "Phase 2: Implement payment integration with Stripe",
		Mode:              domain.ModeSimulated,
	}
}
