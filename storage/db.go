package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	// ErrNotFound indica que o registro pedido não existe.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateVote indica colisão na chave única (proposal_id, voter):
	// o eleitor já votou nesta proposta.
	ErrDuplicateVote = errors.New("vote already recorded for this proposal and voter")
	// ErrAlreadyInitialized indica que o registro singleton já existe.
	ErrAlreadyInitialized = errors.New("singleton record already initialized")
)

// DB representa a conexão com o banco de dados PostgreSQL.
// O banco é o "host" transacional do núcleo: cada operação de mutação é
// aplicada atomicamente e escritas conflitantes no mesmo registro são
// serializadas pelo próprio Postgres.
type DB struct {
	*sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName, migrationsDir string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	// O container do Postgres pode demorar a aceitar conexões.
	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("Aguardando banco de dados... (%d/5): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	log.Println("Conexão com PostgreSQL estabelecida com sucesso.")

	if err := runMigrations(db.DB, migrationsDir); err != nil {
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{db}, nil
}

// runMigrations executa as migrações usando sql-migrate.
func runMigrations(db *sql.DB, dir string) error {
	migrations := &migrate.FileMigrationSource{Dir: dir}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		log.Printf("Aplicadas %d migrações ao banco de dados.", n)
	} else {
		log.Println("Nenhuma migração nova para aplicar.")
	}
	return nil
}

// u64 serializa um uint64 para uma coluna NUMERIC(20,0). BIGINT não cobre
// a metade alta do domínio u64 dos registros originais.
func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// isUniqueViolation reconhece o código 23505 do Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
