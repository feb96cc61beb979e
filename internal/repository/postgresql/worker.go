package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/domain/worker"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/crypto"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const workerColumns = `id, uid, name, phone_enc, id_number_enc, email, created_at, updated_at`

type workerRepositoryImpl struct {
	db     *database.DB
	cipher crypto.Cipher
}

func NewWorkerRepository(db *database.DB, cipher crypto.Cipher) worker.WorkerRepository {
	return &workerRepositoryImpl{db: db, cipher: cipher}
}

// Create implements worker.WorkerRepository.
func (r *workerRepositoryImpl) Create(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	phoneEnc, err := r.cipher.Encrypt(w.Phone)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to encrypt phone: %w", err)
	}
	idEnc, err := r.cipher.Encrypt(w.IDNumber)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to encrypt id number: %w", err)
	}

	query := `
		INSERT INTO workers (uid, name, phone_enc, phone_hash, id_number_enc, id_number_hash, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		w.UID, w.Name,
		phoneEnc, r.cipher.Hash(w.Phone),
		idEnc, r.cipher.Hash(w.IDNumber),
		w.Email,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, "workers_phone_hash_key"):
			return worker.Worker{}, worker.ErrPhoneExists
		case isUniqueViolation(err, "workers_id_number_hash_key"):
			return worker.Worker{}, worker.ErrIDNumberExists
		}
		return worker.Worker{}, fmt.Errorf("failed to insert worker: %w", err)
	}

	return w, nil
}

// GetByID implements worker.WorkerRepository.
func (r *workerRepositoryImpl) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	return r.getOne(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)
}

// GetByUID implements worker.WorkerRepository.
func (r *workerRepositoryImpl) GetByUID(ctx context.Context, uid string) (worker.Worker, error) {
	return r.getOne(ctx, `SELECT `+workerColumns+` FROM workers WHERE uid = $1`, uid)
}

// GetByPhone implements worker.WorkerRepository.
func (r *workerRepositoryImpl) GetByPhone(ctx context.Context, phone string) (worker.Worker, error) {
	return r.getOne(ctx, `SELECT `+workerColumns+` FROM workers WHERE phone_hash = $1`, r.cipher.Hash(phone))
}

func (r *workerRepositoryImpl) getOne(ctx context.Context, query string, arg any) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	var (
		w        worker.Worker
		phoneEnc string
		idEnc    string
	)
	err := q.QueryRow(ctx, query, arg).Scan(
		&w.ID, &w.UID, &w.Name, &phoneEnc, &idEnc, &w.Email, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}

	w.Phone, err = r.cipher.Decrypt(phoneEnc)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to decrypt phone of worker %s: %w", w.ID, err)
	}
	w.IDNumber, err = r.cipher.Decrypt(idEnc)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to decrypt id number of worker %s: %w", w.ID, err)
	}

	return w, nil
}

// BackfillLookupHashes implements worker.WorkerRepository.
func (r *workerRepositoryImpl) BackfillLookupHashes(ctx context.Context, afterID string, limit int) (worker.HashBackfillResult, error) {
	q := GetQuerier(ctx, r.db)

	if afterID == "" {
		afterID = uuid.Nil.String()
	}

	rows, err := q.Query(ctx, `
		SELECT id, phone_enc, id_number_enc
		FROM workers
		WHERE (phone_hash IS NULL OR id_number_hash IS NULL) AND id > $1
		ORDER BY id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return worker.HashBackfillResult{}, fmt.Errorf("failed to query workers without hashes: %w", err)
	}

	type pending struct {
		id, phoneHash, idHash string
	}
	var (
		res     worker.HashBackfillResult
		updates []pending
	)
	for rows.Next() {
		var id, phoneEnc, idEnc string
		if err := rows.Scan(&id, &phoneEnc, &idEnc); err != nil {
			rows.Close()
			return worker.HashBackfillResult{}, fmt.Errorf("failed to scan worker: %w", err)
		}
		res.Scanned++
		res.LastID = id

		phone, okPhone := crypto.TryDecrypt(r.cipher, phoneEnc)
		idNumber, okID := crypto.TryDecrypt(r.cipher, idEnc)
		if !okPhone || !okID {
			slog.Warn("skipping worker with undecryptable PII", "worker_id", id)
			res.Skipped++
			continue
		}
		updates = append(updates, pending{id: id, phoneHash: r.cipher.Hash(phone), idHash: r.cipher.Hash(idNumber)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return worker.HashBackfillResult{}, fmt.Errorf("failed to iterate workers: %w", err)
	}

	for _, u := range updates {
		_, err := q.Exec(ctx, `
			UPDATE workers SET phone_hash = $1, id_number_hash = $2, updated_at = NOW()
			WHERE id = $3
		`, u.phoneHash, u.idHash, u.id)
		if err != nil {
			if isUniqueViolation(err, "") {
				slog.Warn("skipping worker whose hash collides with another row", "worker_id", u.id)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to update hashes of worker %s: %w", u.id, err)
		}
		res.Updated++
	}

	return res, nil
}
