package directory

// Name is a user's decomposed display name.
type Name struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// Login carries the upstream account identifiers.
type Login struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

// Picture holds the avatar variants.
type Picture struct {
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Thumbnail string `json:"thumbnail"`
}

// Location is the coarse user locality shown on cards.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// DOB is the date of birth block; only the age is rendered.
type DOB struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

// Registered records when the account was created.
type Registered struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

// User is one directory record, immutable once fetched.
type User struct {
	Gender     string     `json:"gender"`
	Name       Name       `json:"name"`
	Email      string     `json:"email"`
	Login      Login      `json:"login"`
	Phone      string     `json:"phone"`
	Picture    Picture    `json:"picture"`
	Location   Location   `json:"location"`
	DOB        DOB        `json:"dob"`
	Registered Registered `json:"registered"`
	Nat        string     `json:"nat"`
}

// Info echoes the query back alongside the upstream API version.
type Info struct {
	Seed    string `json:"seed"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
	Version string `json:"version"`
}

// Response is one page of directory results.
type Response struct {
	Results []User `json:"results"`
	Info    Info   `json:"info"`
}

// Params select one page of the directory. Zero values fall back to the
// client defaults (page 1, the configured page size and seed).
type Params struct {
	Page    int
	Results int
	Seed    string
}
