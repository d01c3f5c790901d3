package database

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, display_number, full_name, username, email, password_hash, role, verified, total_earnings, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(display_number), 0) + 1 FROM users), ?, ?, ?, ?, ?, 0, '0', ?, ?)`

	queryGetUserById = `
		SELECT id, display_number, full_name, username, email, password_hash, role, verified, total_earnings, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByUsername = `
		SELECT id, display_number, full_name, username, email, password_hash, role, verified, total_earnings, created_at, updated_at
		FROM users
		WHERE username = ?`

	queryGetUsers = `
		SELECT id, display_number, full_name, username, email, password_hash, role, verified, total_earnings, created_at, updated_at
		FROM users
		ORDER BY display_number`

	querySetUserVerified = `
		UPDATE users SET verified = ?, updated_at = ? WHERE id = ?`

	queryGetUserEarnings = `
		SELECT total_earnings FROM users WHERE id = ?`

	queryUpdateUserEarnings = `
		UPDATE users SET total_earnings = ?, updated_at = ? WHERE id = ?`

	// Package queries
	queryUpsertPackage = `
		INSERT INTO packages (id, name, amount, return_percent, duration_days, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			return_percent = excluded.return_percent,
			duration_days = excluded.duration_days,
			active = excluded.active`

	queryGetPackages = `
		SELECT id, name, amount, return_percent, duration_days, active, created_at
		FROM packages
		WHERE active = 1
		ORDER BY duration_days, name`

	queryGetPackageById = `
		SELECT id, name, amount, return_percent, duration_days, active, created_at
		FROM packages
		WHERE id = ?`

	// Help activity queries
	queryInsertActivity = `
		INSERT INTO help_activities (id, giver_id, receiver_id, package_id, amount, status, admin_approved, created_at, maturity_date, updated_at)
		VALUES (?, ?, ?, ?, ?, 'active', 0, ?, ?, ?)`

	queryCheckActiveGiver = `
		SELECT id FROM help_activities
		WHERE giver_id = ? AND status = 'active'
		LIMIT 1`

	queryCheckActiveReceiver = `
		SELECT id FROM help_activities
		WHERE receiver_id = ? AND status = 'active'
		LIMIT 1`

	queryGetActivityById = `
		SELECT id, giver_id, receiver_id, package_id, amount, status, admin_approved, created_at, maturity_date, updated_at
		FROM help_activities
		WHERE id = ?`

	queryGetUserActivities = `
		SELECT id, giver_id, receiver_id, package_id, amount, status, admin_approved, created_at, maturity_date, updated_at
		FROM help_activities
		WHERE giver_id = ?1 OR receiver_id = ?1
		ORDER BY created_at DESC`

	queryGetAllActivities = `
		SELECT id, giver_id, receiver_id, package_id, amount, status, admin_approved, created_at, maturity_date, updated_at
		FROM help_activities
		ORDER BY created_at DESC`

	// Status transitions are guarded on the current status so a concurrent
	// transition surfaces as zero rows affected instead of a silent overwrite.
	queryMarkActivityMatched = `
		UPDATE help_activities SET status = 'matched', updated_at = ?
		WHERE id = ? AND status = 'active'`

	queryMarkActivityCompleted = `
		UPDATE help_activities SET status = 'completed', updated_at = ?
		WHERE id = ? AND status = 'matched'`

	// Payment match queries
	queryInsertMatch = `
		INSERT INTO payment_matches (id, giver_activity_id, receiver_activity_id, package_id, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'pending', ?, ?)`

	queryGetMatchById = `
		SELECT id, giver_activity_id, receiver_activity_id, package_id, amount, status, created_at, updated_at
		FROM payment_matches
		WHERE id = ?`

	queryConfirmMatch = `
		UPDATE payment_matches SET status = 'confirmed', updated_at = ?
		WHERE id = ? AND status = 'pending'`

	queryCompleteMatch = `
		UPDATE payment_matches SET status = 'completed', updated_at = ?
		WHERE id = ? AND status = 'confirmed'`

	// A user can hold two open matches at once (giver side of one, receiver
	// side of another); the receiver side wins because that match carries the
	// payment the user is waiting to acknowledge.
	queryGetCurrentMatchForUser = `
		SELECT m.id, m.giver_activity_id, m.receiver_activity_id, m.package_id, m.amount, m.status, m.created_at, m.updated_at,
		       CASE WHEN ga.giver_id = ?1 THEN 'giver' ELSE 'receiver' END AS role
		FROM payment_matches m
		JOIN help_activities ga ON ga.id = m.giver_activity_id
		JOIN help_activities ra ON ra.id = m.receiver_activity_id
		WHERE m.status != 'completed' AND (ga.giver_id = ?1 OR ra.receiver_id = ?1)
		ORDER BY CASE WHEN ra.receiver_id = ?1 THEN 0 ELSE 1 END, m.created_at DESC
		LIMIT 1`

	queryGetOpenMatchForActivity = `
		SELECT id, giver_activity_id, receiver_activity_id, package_id, amount, status, created_at, updated_at
		FROM payment_matches
		WHERE status != 'completed' AND (giver_activity_id = ?1 OR receiver_activity_id = ?1)
		LIMIT 1`

	// Payment account queries
	queryUpsertPaymentAccount = `
		INSERT INTO payment_accounts (id, user_id, account_name, account_number, provider, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			account_name = excluded.account_name,
			account_number = excluded.account_number,
			provider = excluded.provider,
			updated_at = excluded.updated_at`

	queryGetPaymentAccount = `
		SELECT id, user_id, account_name, account_number, provider, updated_at
		FROM payment_accounts
		WHERE user_id = ?`
)
