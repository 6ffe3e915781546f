package mockapi

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultResults  = 50
	defaultSeed     = "myapp"
	maxResultsParam = 5000
	apiVersion      = "1.4"
)

var (
	firstNames = []string{
		"Lucas", "Emma", "Mateo", "Sofia", "Hugo", "Valentina", "Diego",
		"Camila", "Pablo", "Lucia", "Adrian", "Martina", "Alvaro", "Paula",
		"Javier", "Elena", "Marcos", "Clara", "Sergio", "Irene",
	}
	lastNames = []string{
		"Garcia", "Martinez", "Lopez", "Sanchez", "Romero", "Torres",
		"Flores", "Rivera", "Gomez", "Diaz", "Vargas", "Castro", "Ortega",
		"Delgado", "Navarro", "Ramos",
	}
	cities = []string{
		"Madrid", "Barcelona", "Valencia", "Sevilla", "Bilbao", "Granada",
		"Malaga", "Zaragoza", "Murcia", "Oviedo",
	}
	countries = []string{"Spain", "Mexico", "Argentina", "Colombia", "Chile", "Peru"}
	nats      = []string{"ES", "MX", "AR", "CO", "CL", "PE"}
)

type userJSON struct {
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Login struct {
		UUID     string `json:"uuid"`
		Username string `json:"username"`
	} `json:"login"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Picture  struct {
		Large string `json:"large"`
	} `json:"picture"`
	Location struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	DOB struct {
		Age int `json:"age"`
	} `json:"dob"`
	Nat        string `json:"nat"`
	Registered struct {
		Date string `json:"date"`
	} `json:"registered"`
}

type usersResponse struct {
	Results []userJSON `json:"results"`
	Info    struct {
		Seed    string `json:"seed"`
		Results int    `json:"results"`
		Page    int    `json:"page"`
		Version string `json:"version"`
	} `json:"info"`
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := intParam(q.Get("page"), defaultPage)
	results := intParam(q.Get("results"), defaultResults)
	if results > maxResultsParam {
		results = maxResultsParam
	}
	seed := q.Get("seed")
	if seed == "" {
		seed = defaultSeed
	}

	resp := usersResponse{Results: generateUsers(seed, page, results)}
	resp.Info.Seed = seed
	resp.Info.Results = results
	resp.Info.Page = page
	resp.Info.Version = apiVersion

	writeJSON(w, http.StatusOK, resp)
}

func intParam(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// generateUsers produces a deterministic roster: the same seed and page
// always yield the same records.
func generateUsers(seed string, page, results int) []userJSON {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", seed, page)
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	users := make([]userJSON, results)
	for i := range users {
		u := &users[i]
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		natIdx := rng.Intn(len(nats))

		u.Name.First = first
		u.Name.Last = last

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			// math/rand readers never fail; keep the record usable anyway.
			id = uuid.Nil
		}
		u.Login.UUID = id.String()
		u.Login.Username = fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), rng.Intn(1000))

		u.Email = fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last))
		u.Phone = fmt.Sprintf("+34 %03d-%03d-%03d", rng.Intn(1000), rng.Intn(1000), rng.Intn(1000))
		u.Picture.Large = fmt.Sprintf("https://randomuser.me/api/portraits/lego/%d.jpg", rng.Intn(10))
		u.Location.City = cities[rng.Intn(len(cities))]
		u.Location.Country = countries[natIdx]
		u.DOB.Age = 18 + rng.Intn(62)
		u.Nat = nats[natIdx]

		registered := time.Date(2010+rng.Intn(14), time.Month(1+rng.Intn(12)), 1+rng.Intn(28), rng.Intn(24), rng.Intn(60), rng.Intn(60), 0, time.UTC)
		u.Registered.Date = registered.Format(time.RFC3339)
	}
	return users
}
