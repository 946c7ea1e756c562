package record

const (
	columns = `id, name, father_name, date_of_birth, email, phone_number, is_deleted, deleted_at, created_at, updated_at`

	// $1 is the search term, '' matches everything.
	searchFilter = `($1::text = '' OR name ILIKE '%' || $1::text || '%' OR father_name ILIKE '%' || $1::text || '%' OR email ILIKE '%' || $1::text || '%' OR phone_number ILIKE '%' || $1::text || '%')`

	ConstraintEmailActive = "user_records_email_active_uniq"
	ConstraintPhoneActive = "user_records_phone_active_uniq"
)

// view is a row filter over user_records. Every read goes through one.
type view struct {
	filter string
}

func activeView() view  { return view{filter: "is_deleted = FALSE"} }
func deletedView() view { return view{filter: "is_deleted = TRUE"} }
func allView() view     { return view{filter: "TRUE"} }

func (v view) selectByID() string {
	return `SELECT ` + columns + ` FROM user_records WHERE ` + v.filter + ` AND id = $1`
}

func (v view) selectPage() string {
	return `SELECT ` + columns + ` FROM user_records WHERE ` + v.filter + ` AND ` + searchFilter +
		` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
}

func (v view) count() string {
	return `SELECT count(*) FROM user_records WHERE ` + v.filter + ` AND ` + searchFilter
}

func (v view) selectConflicts() string {
	return `SELECT ` + columns + ` FROM user_records WHERE ` + v.filter + ` AND id <> $3 AND (email = $1 OR phone_number = $2)`
}

const (
	InsertRecord = `
		INSERT INTO user_records (name, father_name, date_of_birth, email, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + columns
	UpdateActiveRecord = `
		UPDATE user_records
		SET name = $1,
		    father_name = $2,
		    date_of_birth = $3,
		    email = $4,
		    phone_number = $5,
		    updated_at = now()
		WHERE id = $6 AND is_deleted = FALSE
		RETURNING ` + columns
	SoftDeleteRecord = `
		UPDATE user_records
		SET is_deleted = TRUE,
		    deleted_at = now(),
		    updated_at = now()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING ` + columns
	RestoreRecord = `
		UPDATE user_records
		SET is_deleted = FALSE,
		    deleted_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND is_deleted = TRUE
		RETURNING ` + columns
	DeleteRecord = `DELETE FROM user_records WHERE id = $1 RETURNING ` + columns
)
