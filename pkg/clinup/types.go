package clinup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ID is an opaque identifier. The backend sends numbers, some endpoints send strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id != "" && isDigits(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

func isDigits(s string) bool {
	if len(s) > 18 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

type Person struct {
	ID          ID           `json:"id"`
	Firstname   string       `json:"firstname"`
	Lastname    string       `json:"lastname"`
	Picture     string       `json:"picture,omitempty"`
	Email       string       `json:"email,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.Firstname + " " + p.Lastname)
}

type Experience struct {
	Experience  string `json:"experience"`
	DtStart     string `json:"dtStart,omitempty"`
	DtEnd       string `json:"dtEnd,omitempty"`
	Description string `json:"description,omitempty"`
}

type Logement struct {
	ID      ID      `json:"id"`
	Name    string  `json:"name"`
	Adresse string  `json:"adresse,omitempty"`
	Hote    *Person `json:"hote,omitempty"`
}

type ImgTask struct {
	ID       ID     `json:"id"`
	FilePath string `json:"filePath"`
}

type Task struct {
	ID          ID        `json:"id"`
	Titre       string    `json:"titre"`
	Detail      string    `json:"detail"`
	Description string    `json:"description,omitempty"`
	Img         *string   `json:"img,omitempty"`
	ImgTasks    []ImgTask `json:"imgTasks"`
}

// Postuler is a provider's application on an open reservation. ID is the provider id.
type Postuler struct {
	ID          ID     `json:"id"`
	Prestataire string `json:"prestataire"`
	Picture     string `json:"picture,omitempty"`
	Comment     string `json:"comment"`
}

type Video struct {
	ID       ID     `json:"id,omitempty"`
	FilePath string `json:"filePath"`
}

// Reservation is the booking as the server returns it. Statut is kept verbatim;
// internal/reservation turns it into a closed status type.
type Reservation struct {
	ID          ID              `json:"id"`
	Statut      string          `json:"statut"`
	Logement    Logement        `json:"logement"`
	Date        string          `json:"date"`
	Heure       string          `json:"heure"`
	NbrHeure    int             `json:"nbrHeure"`
	Prix        decimal.Decimal `json:"prix"`
	Description *string         `json:"description"`
	Prestataire *Person         `json:"prestataire,omitempty"`
	Tasks       []Task          `json:"tasks"`
	Postulers   []Postuler      `json:"postulers"`
	Intent      string          `json:"intent,omitempty"`
	Video       *Video          `json:"video,omitempty"`

	// Provider view only.
	HasApplied  bool `json:"hasApplied,omitempty"`
	InvitExists bool `json:"invitExists,omitempty"`
}

// IcalReservation is a booking synthesized from an external calendar feed,
// waiting for the host to review and publish it.
type IcalReservation struct {
	ID       ID              `json:"id"`
	Summary  string          `json:"summary,omitempty"`
	Logement string          `json:"logement"`
	Start    string          `json:"start,omitempty"`
	End      string          `json:"end"`
	NbrHeure int             `json:"nbrHeure"`
	Prix     decimal.Decimal `json:"prix"`
}

type ReservationLists struct {
	Reservations []Reservation     `json:"reservations"`
	Icalres      []IcalReservation `json:"icalres"`
	// Counts maps a reservation id to its number of applicants.
	Counts map[string]int `json:"counts"`
}

func (l ReservationLists) Applicants(id ID) int {
	if l.Counts == nil {
		return 0
	}
	return l.Counts[string(id)]
}

type NewReservation struct {
	LogementID  ID              `json:"logement_id"`
	Date        string          `json:"date"`
	Heure       string          `json:"heure"`
	NbrHeure    int             `json:"nbrHeure"`
	Prix        decimal.Decimal `json:"prix"`
	Description string          `json:"description,omitempty"`
}

type IcalEdit struct {
	NbrHeure int             `json:"nbrHeure"`
	Prix     decimal.Decimal `json:"prix"`
}

type Invitation struct {
	ID      ID     `json:"id"`
	Nom     string `json:"nom"`
	Email   string `json:"email"`
	Code    string `json:"code,omitempty"`
	Etat    string `json:"etat"`
	Message string `json:"message,omitempty"`
}

type NewInvitation struct {
	Nom     string `json:"nom"`
	Email   string `json:"email"`
	Message string `json:"message,omitempty"`
}

// SheetParams are the handles the payment SDK needs to present its sheet.
type SheetParams struct {
	PaymentIntent string `json:"paymentIntent"`
	EphemeralKey  string `json:"ephemeralKey"`
	CustomerID    string `json:"customerId"`
}

func (p SheetParams) Complete() bool {
	return p.PaymentIntent != "" && p.EphemeralKey != "" && p.CustomerID != ""
}

type ProviderProfile struct {
	Prestataire Person    `json:"prestataire"`
	Average     int       `json:"average"`
	Demande     Demande   `json:"demande"`
	Comments    []Comment `json:"comments,omitempty"`
}

type Demande struct {
	ID     ID     `json:"id"`
	Statut string `json:"statut"`
}

type Comment struct {
	ID             ID     `json:"id"`
	ClientName     string `json:"clientName,omitempty"`
	ClientPicture  string `json:"clientPicture,omitempty"`
	Evaluation     int    `json:"evaluation"`
	Recommandation bool   `json:"recommandation"`
	Comment        string `json:"comment"`
	Response       string `json:"response,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

type Profile struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Adresse     string `json:"adresse,omitempty"`
	Description string `json:"description,omitempty"`
	Picture     string `json:"picture,omitempty"`
}

type Disponibilite struct {
	ID    ID     `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Notification struct {
	ID        ID     `json:"id"`
	Content   string `json:"content"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

type Conversation struct {
	ID                   ID     `json:"id"`
	ParticipantName      string `json:"participantName"`
	ParticipantPicture   string `json:"participantPicture,omitempty"`
	LastMessage          string `json:"lastMessage"`
	LastMessageTimestamp string `json:"lastMessageTimestamp"`
}

type Message struct {
	ID            ID     `json:"id"`
	SenderID      ID     `json:"senderId"`
	SenderName    string `json:"senderName,omitempty"`
	SenderPicture string `json:"senderPicture,omitempty"`
	Type          string `json:"type,omitempty"`
	Content       string `json:"content"`
	Image         string `json:"image,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

type ConversationDetail struct {
	ID           ID        `json:"id"`
	Participant1 Person    `json:"participant1"`
	Participant2 Person    `json:"participant2"`
	Messages     []Message `json:"messages"`
}

// Recipient is the participant who is not me.
func (d ConversationDetail) Recipient(me ID) Person {
	if d.Participant1.ID == me {
		return d.Participant2
	}
	return d.Participant1
}

type HostDashboard struct {
	ReservationsStats []json.RawMessage   `json:"reservationsStats"`
	Logements         []DashboardLogement `json:"logements"`
	LogementsData     []json.RawMessage   `json:"logementsData"`
}

type DashboardLogement struct {
	ID  ID     `json:"id"`
	Nom string `json:"nom"`
}

type DashboardFilter struct {
	LogementID ID
	StartDate  string
	EndDate    string
}

type ProviderDashboard struct {
	MonthlyData map[string]MonthlyEarnings `json:"monthlyData"`
}

type MonthlyEarnings struct {
	TotalHours    decimal.Decimal `json:"totalHours"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}
